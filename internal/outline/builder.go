// Package outline numbers the h2-h4 headings of an HTML body and builds a
// nested table of contents linking to them.
package outline

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/dgallion1/doctoc/internal/dom"
)

var (
	// ErrNotFound is returned when a container element is missing.
	ErrNotFound = errors.New("element not found")
	// ErrAlreadyBuilt is returned when the outline container was populated
	// by an earlier Build.
	ErrAlreadyBuilt = errors.New("outline already built")
	// ErrSkippedLevel is returned under PolicyStrict when a heading appears
	// without its parent level, e.g. an h4 directly under an h2.
	ErrSkippedLevel = errors.New("heading skips a level")
)

// Attribute set on the outline container once it has been populated.
const (
	BuiltAttr  = "data-outline"
	BuiltValue = "built"
)

// ImplicitClass marks placeholder list items opened for a skipped level.
const ImplicitClass = "outline-implicit"

// Policy decides what happens when a heading skips a level.
type Policy int

const (
	// PolicyLenient opens the skipped level implicitly at count 0.
	PolicyLenient Policy = iota
	// PolicyStrict aborts the build with ErrSkippedLevel.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "lenient"
}

type options struct {
	policy Policy
	log    *slog.Logger
}

// Option configures Build.
type Option func(*options)

// WithPolicy sets the skipped-level policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger logs every numbered heading at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Build numbers the h2, h3 and h4 elements that are direct children of body
// and populates container with a nested list of links to them.
//
// The container is hidden, receives a new <ul> and is marked so that a
// second Build on the same document returns ErrAlreadyBuilt. Each heading
// gets its label prepended as a text node and an id of the form
// "section<label>". A failure part way through leaves earlier headings
// mutated.
func Build(container, body *html.Node, opts ...Option) (*doctree.Outline, error) {
	o := options{policy: PolicyLenient}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}

	if container == nil {
		return nil, fmt.Errorf("outline container: %w", ErrNotFound)
	}
	if body == nil {
		return nil, fmt.Errorf("body container: %w", ErrNotFound)
	}
	if v, _ := dom.Attr(container, BuiltAttr); v == BuiltValue {
		return nil, ErrAlreadyBuilt
	}

	dom.SetDisplay(container, "none")
	root := dom.Element(atom.Ul)
	container.AppendChild(root)
	dom.SetAttr(container, BuiltAttr, BuiltValue)

	s := state{root: root, out: &doctree.Outline{}}
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		level := dom.HeadingLevel(n)
		if level < 2 || level > 4 {
			continue
		}
		var err error
		if s, err = s.step(n, level, o.policy); err != nil {
			return nil, err
		}
		o.log.Debug("numbered heading", "label", s.last.String(), "level", level)
	}

	if s.out.Entries == nil {
		s.out.Entries = []*doctree.Entry{}
	}
	return s.out, nil
}

// BuildByID looks up the outline and body containers by id and runs Build.
func BuildByID(doc *html.Node, outlineID, bodyID string, opts ...Option) (*doctree.Outline, error) {
	container := dom.FindByID(doc, outlineID)
	if container == nil {
		return nil, fmt.Errorf("outline container %q: %w", outlineID, ErrNotFound)
	}
	body := dom.FindByID(doc, bodyID)
	if body == nil {
		return nil, fmt.Errorf("body container %q: %w", bodyID, ErrNotFound)
	}
	out, err := Build(container, body, opts...)
	if err != nil {
		return nil, err
	}
	out.Title = dom.FindTitle(doc)
	return out, nil
}

// state is threaded by value through the scan of the body's children.
type state struct {
	i2, i3, i4 int
	last       Label

	root           *html.Node
	h2Item, h2List *html.Node
	h3Item, h3List *html.Node

	out     *doctree.Outline
	h2Entry *doctree.Entry
	h3Entry *doctree.Entry
}

func (s state) step(n *html.Node, level int, policy Policy) (state, error) {
	switch level {
	case 2:
		s.i2++
		s.i3, s.i4 = 0, 0
		s.last = Label{Parts: [3]int{s.i2}, Depth: 1}

		s.h2Item, s.h2Entry = s.appendEntry(s.root, n, s.last, &s.out.Entries)
		s.h2List, s.h3Item, s.h3List, s.h3Entry = nil, nil, nil, nil

	case 3:
		if s.h2Item == nil {
			if policy == PolicyStrict {
				return s, fmt.Errorf("%w: <h3> at position %d.%d has no enclosing <h2>", ErrSkippedLevel, s.i2, s.i3+1)
			}
			s = s.openImplicitH2()
		}
		s.i3++
		s.i4 = 0
		s.last = Label{Parts: [3]int{s.i2, s.i3}, Depth: 2}

		if s.h2List == nil {
			s.h2List = dom.Element(atom.Ul)
			s.h2Item.AppendChild(s.h2List)
		}
		s.h3Item, s.h3Entry = s.appendEntry(s.h2List, n, s.last, &s.h2Entry.Children)
		s.h3List = nil

	case 4:
		if s.h3Item == nil {
			if policy == PolicyStrict {
				return s, fmt.Errorf("%w: <h4> at position %d.%d.%d has no enclosing <h3>", ErrSkippedLevel, s.i2, s.i3, s.i4+1)
			}
			if s.h2Item == nil {
				s = s.openImplicitH2()
			}
			s = s.openImplicitH3()
		}
		s.i4++
		s.last = Label{Parts: [3]int{s.i2, s.i3, s.i4}, Depth: 3}

		if s.h3List == nil {
			s.h3List = dom.Element(atom.Ul)
			s.h3Item.AppendChild(s.h3List)
		}
		s.appendEntry(s.h3List, n, s.last, &s.h3Entry.Children)
	}
	return s, nil
}

// appendEntry numbers the heading and appends a linked list item to list.
func (s state) appendEntry(list, heading *html.Node, label Label, entries *[]*doctree.Entry) (*html.Node, *doctree.Entry) {
	entry := &doctree.Entry{
		Label:  label.String(),
		Anchor: label.Anchor(),
		Title:  dom.TextContent(heading),
		Level:  label.Depth + 1,
	}
	*entries = append(*entries, entry)

	a := dom.Element(atom.A, html.Attribute{Key: "href", Val: label.Href()})
	for _, c := range dom.CloneChildren(heading) {
		a.AppendChild(c)
	}

	dom.Prepend(heading, dom.Text(label.Prefix()))
	dom.SetAttr(heading, "id", label.Anchor())

	li := dom.Element(atom.Li)
	li.AppendChild(a)
	list.AppendChild(li)
	return li, entry
}

func (s state) openImplicitH2() state {
	label := Label{Parts: [3]int{s.i2}, Depth: 1}
	s.h2Item, s.h2Entry = s.appendImplicit(s.root, label, &s.out.Entries)
	s.h2List, s.h3Item, s.h3List, s.h3Entry = nil, nil, nil, nil
	return s
}

func (s state) openImplicitH3() state {
	if s.h2List == nil {
		s.h2List = dom.Element(atom.Ul)
		s.h2Item.AppendChild(s.h2List)
	}
	label := Label{Parts: [3]int{s.i2, s.i3}, Depth: 2}
	s.h3Item, s.h3Entry = s.appendImplicit(s.h2List, label, &s.h2Entry.Children)
	s.h3List = nil
	return s
}

func (s state) appendImplicit(list *html.Node, label Label, entries *[]*doctree.Entry) (*html.Node, *doctree.Entry) {
	entry := &doctree.Entry{
		Label:    label.String(),
		Level:    label.Depth + 1,
		Implicit: true,
	}
	*entries = append(*entries, entry)

	li := dom.Element(atom.Li, html.Attribute{Key: "class", Val: ImplicitClass})
	list.AppendChild(li)
	return li, entry
}

var generatedID = regexp.MustCompile(`^section\d+(\.\d+){0,2}$`)

// Collisions returns the ids under root that have the form Build assigns to
// headings. Run it before Build: afterwards every numbered heading matches.
func Collisions(root *html.Node) []string {
	var ids []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id, ok := dom.Attr(n, "id"); ok && generatedID.MatchString(id) {
				ids = append(ids, id)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return ids
}
