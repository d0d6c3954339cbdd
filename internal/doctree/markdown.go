package doctree

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/doctoc/internal/dom"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// HTML renders the outline as a nested <ul> list of numbered links.
func (o *Outline) HTML() (string, error) {
	root := listNode(o.Entries)
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render outline: %w", err)
	}
	return buf.String(), nil
}

// Markdown renders the outline as a nested Markdown bullet list.
func (o *Outline) Markdown() (string, error) {
	if len(o.Entries) == 0 {
		return "", nil
	}
	src, err := o.HTML()
	if err != nil {
		return "", err
	}
	md, err := mdConverter.ConvertString(src)
	if err != nil {
		return "", fmt.Errorf("convert outline to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

// Text renders the outline as indented plain text, one entry per line.
func (o *Outline) Text() string {
	var sb strings.Builder
	o.Walk(func(e *Entry, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		if e.Implicit {
			sb.WriteString(e.Label + ".\n")
			return true
		}
		fmt.Fprintf(&sb, "%s. %s\n", e.Label, e.Title)
		return true
	})
	return sb.String()
}

func listNode(entries []*Entry) *html.Node {
	ul := dom.Element(atom.Ul)
	for _, e := range entries {
		li := dom.Element(atom.Li)
		if e.Implicit {
			li.AppendChild(dom.Text(e.Label + "."))
		} else {
			a := dom.Element(atom.A, html.Attribute{Key: "href", Val: "#" + e.Anchor})
			a.AppendChild(dom.Text(e.Label + ". " + e.Title))
			li.AppendChild(a)
		}
		if len(e.Children) > 0 {
			li.AppendChild(listNode(e.Children))
		}
		ul.AppendChild(li)
	}
	return ul
}
