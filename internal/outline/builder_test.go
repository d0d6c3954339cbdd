package outline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/doctoc/internal/dom"
)

func parseDoc(t *testing.T, body string) *html.Node {
	t.Helper()
	src := `<html><head><title>Manual</title></head><body><div id="toc"></div><div id="content">` + body + `</div></body></html>`
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func headings(body string) string {
	var sb strings.Builder
	for i, tag := range strings.Fields(body) {
		fmt.Fprintf(&sb, "<%s>T%d</%s>\n", tag, i+1, tag)
	}
	return sb.String()
}

// listItems returns the <li> children of a <ul>.
func listItems(ul *html.Node) []*html.Node {
	var out []*html.Node
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Li {
			out = append(out, c)
		}
	}
	return out
}

// nestedList returns the <ul> owned by an <li>, or nil.
func nestedList(li *html.Node) *html.Node {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Ul {
			return c
		}
	}
	return nil
}

func rootList(t *testing.T, doc *html.Node) *html.Node {
	t.Helper()
	toc := dom.FindByID(doc, "toc")
	if toc.FirstChild == nil || toc.FirstChild.DataAtom != atom.Ul {
		t.Fatalf("expected outline container to hold a <ul>")
	}
	return toc.FirstChild
}

func headingIDs(doc *html.Node) []string {
	var ids []string
	content := dom.FindByID(doc, "content")
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if dom.HeadingLevel(c) == 0 {
			continue
		}
		if id, ok := dom.Attr(c, "id"); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestBuild_OnlyH2(t *testing.T) {
	doc := parseDoc(t, headings("h2 h2 h2 h2"))
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := listItems(rootList(t, doc))
	if len(items) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(items))
	}
	for i, li := range items {
		a := li.FirstChild
		if href, _ := dom.Attr(a, "href"); href != fmt.Sprintf("#section%d", i+1) {
			t.Errorf("entry %d: unexpected href %q", i, href)
		}
		if got := dom.InnerHTML(a); got != fmt.Sprintf("T%d", i+1) {
			t.Errorf("entry %d: expected link text %q, got %q", i, fmt.Sprintf("T%d", i+1), got)
		}
	}

	content := dom.FindByID(doc, "content")
	k := 0
	for c := content.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.H2 {
			continue
		}
		k++
		if got := dom.InnerHTML(c); !strings.HasPrefix(got, fmt.Sprintf("%d. ", k)) {
			t.Errorf("heading %d: expected prefix %q, got %q", k, fmt.Sprintf("%d. ", k), got)
		}
	}

	if want := []string{"1", "2", "3", "4"}; !reflect.DeepEqual(out.Labels(), want) {
		t.Errorf("expected labels %v, got %v", want, out.Labels())
	}
	if out.Title != "Manual" {
		t.Errorf("expected title %q, got %q", "Manual", out.Title)
	}
}

func TestBuild_SiblingSections(t *testing.T) {
	doc := parseDoc(t, headings("h2 h3 h3 h2 h3"))
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"section1", "section1.1", "section1.2", "section2", "section2.1"}
	if got := headingIDs(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("expected ids %v, got %v", want, got)
	}
	if got := out.Labels(); !reflect.DeepEqual(got, []string{"1", "1.1", "1.2", "2", "2.1"}) {
		t.Errorf("unexpected labels %v", got)
	}

	top := listItems(rootList(t, doc))
	if len(top) != 2 {
		t.Fatalf("expected 2 top-level entries, got %d", len(top))
	}
	if n := len(listItems(nestedList(top[0]))); n != 2 {
		t.Errorf("expected first section to own 2 entries, got %d", n)
	}
	if n := len(listItems(nestedList(top[1]))); n != 1 {
		t.Errorf("expected second section to own 1 entry, got %d", n)
	}
}

func TestBuild_ThreeLevels(t *testing.T) {
	doc := parseDoc(t, headings("h2 h3 h4 h4 h3"))
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := out.Labels(); !reflect.DeepEqual(got, []string{"1", "1.1", "1.1.1", "1.1.2", "1.2"}) {
		t.Errorf("unexpected labels %v", got)
	}

	top := listItems(rootList(t, doc))
	subs := listItems(nestedList(top[0]))
	if len(subs) != 2 {
		t.Fatalf("expected 2 level-3 entries, got %d", len(subs))
	}
	if n := len(listItems(nestedList(subs[0]))); n != 2 {
		t.Errorf("expected first h3 to own 2 entries, got %d", n)
	}
	if nestedList(subs[1]) != nil {
		t.Error("expected second h3 to own no nested list")
	}

	h3 := out.Entries[0].Children[0]
	if len(h3.Children) != 2 || h3.Children[1].Label != "1.1.2" {
		t.Errorf("unexpected model children %+v", h3.Children)
	}
}

func TestBuild_AnchorsMatchLinks(t *testing.T) {
	doc := parseDoc(t, headings("h2 h3 h4 h3 h4 h4 h2 h2 h3"))
	if _, err := BuildByID(doc, "toc", "content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hrefs := map[string]int{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.DataAtom == atom.A {
			href, _ := dom.Attr(n, "href")
			hrefs[href]++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(dom.FindByID(doc, "toc"))

	ids := headingIDs(doc)
	if len(ids) != 9 {
		t.Fatalf("expected 9 ids, got %d", len(ids))
	}
	for _, id := range ids {
		if hrefs["#"+id] != 1 {
			t.Errorf("expected exactly one link to %q, got %d", id, hrefs["#"+id])
		}
	}
	if len(hrefs) != len(ids) {
		t.Errorf("expected %d distinct links, got %d", len(ids), len(hrefs))
	}
}

func TestBuild_PreservesMarkup(t *testing.T) {
	doc := parseDoc(t, `<h2 id="intro" class="big">Intro to <code>toc</code></h2>`)
	if _, err := BuildByID(doc, "toc", "content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := dom.FindByID(doc, "section1")
	if h == nil {
		t.Fatal("expected heading id to be replaced with section1")
	}
	if dom.FindByID(doc, "intro") != nil {
		t.Error("expected old id to be gone")
	}
	if cls, _ := dom.Attr(h, "class"); cls != "big" {
		t.Errorf("expected class to survive, got %q", cls)
	}
	if got := dom.InnerHTML(h); got != "1. Intro to <code>toc</code>" {
		t.Errorf("unexpected heading html %q", got)
	}

	a := listItems(rootList(t, doc))[0].FirstChild
	if got := dom.InnerHTML(a); got != "Intro to <code>toc</code>" {
		t.Errorf("unexpected link html %q", got)
	}
}

func TestBuild_SkipsNonHeadingsAndNestedHeadings(t *testing.T) {
	doc := parseDoc(t, `<!-- c --><h1>Top</h1>text<h2>A</h2><section><h2>Nested</h2></section><p>para</p><h5>Deep</h5><h3>B</h3>`)
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.Labels(); !reflect.DeepEqual(got, []string{"1", "1.1"}) {
		t.Errorf("unexpected labels %v", got)
	}

	var nested *html.Node
	for c := dom.FindByID(doc, "content").FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Section {
			nested = c.FirstChild
		}
	}
	if nested == nil || dom.HasAttr(nested, "id") {
		t.Error("expected nested heading to be left alone")
	}
	if got := dom.TextContent(nested); got != "Nested" {
		t.Errorf("expected nested heading text untouched, got %q", got)
	}
}

func TestBuild_EmptyBody(t *testing.T) {
	doc := parseDoc(t, `<p>nothing here</p>`)
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(listItems(rootList(t, doc))); n != 0 {
		t.Errorf("expected empty outline, got %d entries", n)
	}
	if out.Entries == nil || len(out.Entries) != 0 {
		t.Errorf("expected empty non-nil entries, got %v", out.Entries)
	}
}

func TestBuild_HidesContainer(t *testing.T) {
	src := `<html><body><div id="toc" style="color: red; display: block"></div><div id="content"><h2>A</h2></div></body></html>`
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := BuildByID(doc, "toc", "content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	toc := dom.FindByID(doc, "toc")
	if style, _ := dom.Attr(toc, "style"); style != "color: red; display: none" {
		t.Errorf("unexpected style %q", style)
	}
	if Visible(toc) {
		t.Error("expected outline to start hidden")
	}
}

func TestBuild_SecondCallIsRejected(t *testing.T) {
	doc := parseDoc(t, headings("h2 h3"))
	if _, err := BuildByID(doc, "toc", "content"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := dom.Render(doc)

	_, err := BuildByID(doc, "toc", "content")
	if !errors.Is(err, ErrAlreadyBuilt) {
		t.Fatalf("expected ErrAlreadyBuilt, got %v", err)
	}
	after, _ := dom.Render(doc)
	if before != after {
		t.Error("expected document to be unchanged by rejected build")
	}
}

func TestBuild_MissingContainers(t *testing.T) {
	doc := parseDoc(t, headings("h2"))

	_, err := BuildByID(doc, "nope", "content")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("expected error to name the id, got %v", err)
	}

	_, err = BuildByID(doc, "toc", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := Build(nil, dom.FindByID(doc, "content")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for nil container, got %v", err)
	}
}

func TestBuild_LenientSkippedLevels(t *testing.T) {
	tests := []struct {
		name   string
		tags   string
		labels []string
		ids    []string
	}{
		{"h3 before h2", "h3 h2", []string{"0.1", "1"}, []string{"section0.1", "section1"}},
		{"h4 under h2", "h2 h4 h4 h3", []string{"1", "1.0.1", "1.0.2", "1.1"}, []string{"section1", "section1.0.1", "section1.0.2", "section1.1"}},
		{"h4 first", "h4 h2", []string{"0.0.1", "1"}, []string{"section0.0.1", "section1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, headings(tt.tags))
			out, err := BuildByID(doc, "toc", "content")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := out.Labels(); !reflect.DeepEqual(got, tt.labels) {
				t.Errorf("expected labels %v, got %v", tt.labels, got)
			}
			if got := headingIDs(doc); !reflect.DeepEqual(got, tt.ids) {
				t.Errorf("expected ids %v, got %v", tt.ids, got)
			}
		})
	}
}

func TestBuild_LenientPlaceholderStructure(t *testing.T) {
	doc := parseDoc(t, headings("h2 h4 h4 h3"))
	out, err := BuildByID(doc, "toc", "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subs := listItems(nestedList(listItems(rootList(t, doc))[0]))
	if len(subs) != 2 {
		t.Fatalf("expected placeholder plus real h3, got %d items", len(subs))
	}
	if cls, _ := dom.Attr(subs[0], "class"); cls != ImplicitClass {
		t.Errorf("expected placeholder class, got %q", cls)
	}
	if n := len(listItems(nestedList(subs[0]))); n != 2 {
		t.Errorf("expected placeholder to own 2 entries, got %d", n)
	}

	implicit := out.Entries[0].Children[0]
	if !implicit.Implicit || implicit.Label != "1.0" {
		t.Errorf("unexpected placeholder entry %+v", implicit)
	}
}

func TestBuild_StrictRejectsSkippedLevel(t *testing.T) {
	for _, tags := range []string{"h3", "h2 h4", "h4"} {
		doc := parseDoc(t, headings(tags))
		_, err := BuildByID(doc, "toc", "content", WithPolicy(PolicyStrict))
		if !errors.Is(err, ErrSkippedLevel) {
			t.Errorf("tags=%q: expected ErrSkippedLevel, got %v", tags, err)
		}
	}

	doc := parseDoc(t, headings("h2 h3 h4"))
	if _, err := BuildByID(doc, "toc", "content", WithPolicy(PolicyStrict)); err != nil {
		t.Errorf("expected well-formed document to pass strict policy, got %v", err)
	}
}

func TestCollisions(t *testing.T) {
	doc := parseDoc(t, `<h2 id="section1">A</h2><p id="section2.3">x</p><p id="sections">y</p><p id="section1.2.3.4">z</p>`)
	got := Collisions(doc)
	if want := []string{"section1", "section2.3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if Collisions(parseDoc(t, headings("h2 h3"))) != nil {
		t.Error("expected no collisions before build")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{Label{Parts: [3]int{2}, Depth: 1}, "2"},
		{Label{Parts: [3]int{2, 3}, Depth: 2}, "2.3"},
		{Label{Parts: [3]int{2, 3, 1}, Depth: 3}, "2.3.1"},
		{Label{Parts: [3]int{2, 0, 0}, Depth: 1}, "2"},
	}
	for _, tt := range tests {
		if got := tt.label.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
		if got := tt.label.Href(); got != "#section"+tt.want {
			t.Errorf("expected href %q, got %q", "#section"+tt.want, got)
		}
		if got := tt.label.Prefix(); got != tt.want+". " {
			t.Errorf("expected prefix %q, got %q", tt.want+". ", got)
		}
	}
}
