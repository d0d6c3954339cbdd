package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/dgallion1/doctoc/internal/dom"
	"github.com/dgallion1/doctoc/internal/outline"
)

var builtValue = regexp.MustCompile("^" + regexp.QuoteMeta(outline.BuiltValue) + "$")

// HTMLParser handles HTML files.
type HTMLParser struct {
	Sanitize bool
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	title := dom.FindTitle(doc)

	// The sanitizer drops <head>, so the title is taken from the raw parse.
	if p.Sanitize {
		clean := sanitizePolicy().SanitizeBytes(src)
		if doc, err = html.Parse(bytes.NewReader(clean)); err != nil {
			return nil, fmt.Errorf("parse sanitized html: %w", err)
		}
	}

	untitled := title == ""
	if untitled {
		title = trimExt(filename)
	}
	return &Document{Root: doc, Title: title, Filename: filename, Untitled: untitled}, nil
}

// sanitizePolicy is the UGC policy plus what an outlined page needs: ids
// for the containers and anchors, inline display styles, the toggle
// control, and the built marker that stops a second outline pass.
func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class").Globally()
	p.AllowAttrs(outline.BuiltAttr).Matching(builtValue).Globally()
	p.AllowStyles("display").Globally()
	p.AllowElements("button", "input")
	p.AllowAttrs("type", "value").OnElements("button", "input")
	return p
}
