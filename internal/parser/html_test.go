package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/doctoc/internal/dom"
	"github.com/dgallion1/doctoc/internal/outline"
)

const manualPage = `<!DOCTYPE html>
<html><head><title>User Manual</title><script>var x = 1;</script></head>
<body>
<input type="button" id="toc-toggle" value="Show Table of Contents">
<div id="toc"></div>
<div id="content">
<h2 class="chapter">Install</h2>
<p onmouseover="steal()">Run it.</p>
</div>
</body></html>`

func TestHTMLParser_Title(t *testing.T) {
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(manualPage), "manual.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "User Manual" {
		t.Errorf("expected title %q, got %q", "User Manual", doc.Title)
	}
	if doc.Filename != "manual.html" {
		t.Errorf("expected filename %q, got %q", "manual.html", doc.Filename)
	}
}

func TestHTMLParser_TitleFromFilename(t *testing.T) {
	doc, err := (&HTMLParser{}).Parse(strings.NewReader("<p>x</p>"), "docs/guide.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "guide" {
		t.Errorf("expected title %q, got %q", "guide", doc.Title)
	}
}

func TestHTMLParser_Sanitize(t *testing.T) {
	doc, err := (&HTMLParser{Sanitize: true}).Parse(strings.NewReader(manualPage), "manual.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered, err := doc.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(rendered)
	if strings.Contains(out, "var x") || strings.Contains(out, "steal()") {
		t.Errorf("expected scripts and handlers removed, got %s", out)
	}

	for _, id := range []string{"toc", "content", "toc-toggle"} {
		if dom.FindByID(doc.Root, id) == nil {
			t.Errorf("expected #%s to survive sanitizing", id)
		}
	}
	if doc.Title != "User Manual" {
		t.Errorf("expected title from raw document, got %q", doc.Title)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.html", false},
		{"a.HTM", false},
		{"a.md", false},
		{"a.markdown", false},
		{"a.pdf", true},
		{"noext", true},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, DefaultOptions())
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("%s: expected ErrUnsupported, got %v", tt.filename, err)
			}
			continue
		}
		if err != nil || p == nil {
			t.Errorf("%s: unexpected error %v", tt.filename, err)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("%s: IsSupportedExtension disagrees with ForFile", tt.filename)
		}
	}
}

func TestHTMLParser_SanitizeKeepsBuiltMarker(t *testing.T) {
	src := `<div id="toc" data-outline="built" style="display: none"></div><div id="other" data-outline="evil"></div>`
	doc, err := (&HTMLParser{Sanitize: true}).Parse(strings.NewReader(src), "built.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toc := dom.FindByID(doc.Root, "toc")
	if toc == nil {
		t.Fatal("expected toc container to survive")
	}
	if v, _ := dom.Attr(toc, outline.BuiltAttr); v != outline.BuiltValue {
		t.Errorf("expected %s=%q, got %q", outline.BuiltAttr, outline.BuiltValue, v)
	}
	if dom.HasAttr(dom.FindByID(doc.Root, "other"), outline.BuiltAttr) {
		t.Error("expected unexpected marker values to be stripped")
	}
	if !doc.Untitled {
		t.Error("expected untitled document")
	}
}
