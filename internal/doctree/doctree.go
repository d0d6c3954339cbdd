package doctree

// Outline is the numbered table of contents of a document.
type Outline struct {
	Title   string   `json:"title,omitempty"` // Document title (from <title> or filename)
	Entries []*Entry `json:"entries"`         // Level-2 sections
}

// Entry is a numbered section in the outline.
type Entry struct {
	Label    string   `json:"label"`              // Dotted section number, e.g. "2.3.1"
	Anchor   string   `json:"anchor"`             // Heading id, e.g. "section2.3.1"
	Title    string   `json:"title"`              // Heading text before numbering
	Level    int      `json:"level"`              // 2, 3 or 4
	Implicit bool     `json:"implicit,omitempty"` // Placeholder for a skipped level
	Children []*Entry `json:"children,omitempty"` // Subsections
}

// FlatEntry is an entry together with the titles of its ancestors.
type FlatEntry struct {
	Entry      *Entry
	Breadcrumb []string // Heading hierarchy, e.g. ["Install", "Linux"]
}

// Walk visits every entry depth-first in document order. Returning false
// from fn skips the entry's children.
func (o *Outline) Walk(fn func(e *Entry, depth int) bool) {
	var walk func(entries []*Entry, depth int)
	walk = func(entries []*Entry, depth int) {
		for _, e := range entries {
			if fn(e, depth) {
				walk(e.Children, depth+1)
			}
		}
	}
	walk(o.Entries, 0)
}

// Count returns the number of non-implicit entries.
func (o *Outline) Count() int {
	n := 0
	o.Walk(func(e *Entry, _ int) bool {
		if !e.Implicit {
			n++
		}
		return true
	})
	return n
}

// Flatten lists the non-implicit entries in document order.
func (o *Outline) Flatten() []FlatEntry {
	var out []FlatEntry
	var walk func(entries []*Entry, breadcrumb []string)
	walk = func(entries []*Entry, breadcrumb []string) {
		for _, e := range entries {
			if !e.Implicit {
				bc := make([]string, len(breadcrumb))
				copy(bc, breadcrumb)
				out = append(out, FlatEntry{Entry: e, Breadcrumb: bc})
			}
			next := breadcrumb
			if e.Title != "" {
				next = append(append([]string{}, breadcrumb...), e.Title)
			}
			walk(e.Children, next)
		}
	}
	walk(o.Entries, nil)
	return out
}

// Labels returns every non-implicit label in document order.
func (o *Outline) Labels() []string {
	flat := o.Flatten()
	labels := make([]string, 0, len(flat))
	for _, f := range flat {
		labels = append(labels, f.Entry.Label)
	}
	return labels
}
