package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// parseStyle parses an inline style attribute. Property names are
// lowercased.
func parseStyle(s string) ([]*css.Declaration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	// The parser only completes a declaration at its terminator.
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	decls, err := parser.ParseDeclarations(s)
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		d.Property = strings.ToLower(d.Property)
	}
	return decls, nil
}

func formatStyle(decls []*css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, strings.TrimSuffix(d.String(), ";"))
	}
	return strings.Join(parts, "; ")
}

// Display returns the inline display value of n, or "" when unset or when
// the style attribute does not parse. The last declaration wins, as in a
// browser.
func Display(n *html.Node) string {
	style, ok := Attr(n, "style")
	if !ok {
		return ""
	}
	decls, err := parseStyle(style)
	if err != nil {
		return ""
	}
	display := ""
	for _, d := range decls {
		if d.Property == "display" {
			display = strings.ToLower(d.Value)
		}
	}
	return display
}

// SetDisplay rewrites the display declaration of n's style attribute and
// keeps every other declaration in place. A style that does not parse is
// replaced.
func SetDisplay(n *html.Node, value string) {
	style, _ := Attr(n, "style")
	decls, err := parseStyle(style)
	if err != nil {
		decls = nil
	}

	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.Property == "display" {
			if replaced {
				continue
			}
			d.Value = value
			d.Important = false
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, &css.Declaration{Property: "display", Value: value})
	}
	SetAttr(n, "style", formatStyle(out))
}
