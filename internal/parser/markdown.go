package parser

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"
)

// pageTemplate wraps rendered Markdown so its blocks are direct children of
// the body container, where the outline builder looks for headings.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<input type="button" id="{{.ControlID}}" value="Show Table of Contents">
<div id="{{.OutlineID}}"></div>
<div id="{{.BodyID}}">
{{.Content}}
</div>
</body>
</html>
`))

type page struct {
	Title     string
	OutlineID string
	BodyID    string
	ControlID string
	Content   template.HTML
}

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct {
	opts Options
	md   goldmark.Markdown
}

// NewMarkdownParser returns a parser that renders GitHub-flavored Markdown
// with highlighted code blocks.
func NewMarkdownParser(opts Options) *MarkdownParser {
	def := DefaultOptions()
	if opts.OutlineID == "" {
		opts.OutlineID = def.OutlineID
	}
	if opts.BodyID == "" {
		opts.BodyID = def.BodyID
	}
	if opts.ControlID == "" {
		opts.ControlID = def.ControlID
	}
	return &MarkdownParser{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := p.md.Parser().Parse(text.NewReader(src))

	title := firstH1(doc, src)
	untitled := title == ""
	if untitled {
		title = trimExt(filename)
	}

	var body bytes.Buffer
	if err := p.md.Renderer().Render(&body, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	content := body.Bytes()
	if p.opts.Sanitize {
		content = sanitizePolicy().SanitizeBytes(content)
	}

	var out bytes.Buffer
	err = pageTemplate.Execute(&out, page{
		Title:     title,
		OutlineID: p.opts.OutlineID,
		BodyID:    p.opts.BodyID,
		ControlID: p.opts.ControlID,
		Content:   template.HTML(content),
	})
	if err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}

	root, err := xhtml.Parse(&out)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	return &Document{Root: root, Title: title, Filename: filename, Untitled: untitled}, nil
}

// firstH1 returns the text of the first top-level h1.
func firstH1(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return headingText(h, src)
		}
	}
	return ""
}

// headingText joins the literal text under h, dropping inline markup.
func headingText(h *ast.Heading, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
