package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/dgallion1/doctoc/internal/config"
	"github.com/dgallion1/doctoc/internal/doctree"
	"github.com/dgallion1/doctoc/internal/outline"
	"github.com/dgallion1/doctoc/internal/parser"
)

// Result is an outlined document.
type Result struct {
	HTML       []byte
	Outline    *doctree.Outline
	Collisions []string // Pre-existing ids of the form section<label>

	// Untitled is set when the title was derived from the filename, so the
	// result depends on more than the document bytes.
	Untitled bool
}

// Processor parses a document, builds its outline and renders it back.
// It is safe for concurrent use; every call works on its own tree.
type Processor struct {
	opts   parser.Options
	policy outline.Policy
	log    *slog.Logger
}

// NewProcessor creates a processor from the configured ids and policy.
func NewProcessor(cfg config.Config, log *slog.Logger) *Processor {
	return &Processor{
		opts:   cfg.ParserOptions(),
		policy: cfg.Policy(),
		log:    log,
	}
}

// WithIDs returns a copy using different container ids. Empty values keep
// the current ones.
func (p *Processor) WithIDs(outlineID, bodyID, controlID string) *Processor {
	cp := *p
	if outlineID != "" {
		cp.opts.OutlineID = outlineID
	}
	if bodyID != "" {
		cp.opts.BodyID = bodyID
	}
	if controlID != "" {
		cp.opts.ControlID = controlID
	}
	return &cp
}

// WithPolicy returns a copy using the given skipped-level policy.
func (p *Processor) WithPolicy(policy outline.Policy) *Processor {
	cp := *p
	cp.policy = policy
	return &cp
}

// Policy returns the skipped-level policy in use.
func (p *Processor) Policy() outline.Policy {
	return p.policy
}

func (p *Processor) parse(data []byte, filename string) (*parser.Document, error) {
	ps, err := parser.ForFile(filename, p.opts)
	if err != nil {
		return nil, err
	}
	doc, err := ps.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// Outline numbers the document's headings and fills its outline container.
func (p *Processor) Outline(data []byte, filename string) (*Result, error) {
	doc, err := p.parse(data, filename)
	if err != nil {
		return nil, err
	}

	collisions := outline.Collisions(doc.Root)
	if len(collisions) > 0 {
		p.log.Warn("document already has section ids", "filename", filename, "ids", collisions)
	}

	tree, err := outline.BuildByID(doc.Root, p.opts.OutlineID, p.opts.BodyID,
		outline.WithPolicy(p.policy),
		outline.WithLogger(p.log.With("filename", filename)),
	)
	if err != nil {
		return nil, fmt.Errorf("build outline for %s: %w", filename, err)
	}
	if tree.Title == "" {
		tree.Title = doc.Title
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	return &Result{HTML: out, Outline: tree, Collisions: collisions, Untitled: doc.Untitled}, nil
}

// Toggle flips the outline container's visibility and relabels the control.
// It returns the rendered document and the new visibility.
func (p *Processor) Toggle(data []byte, filename string) ([]byte, bool, error) {
	doc, err := p.parse(data, filename)
	if err != nil {
		return nil, false, err
	}
	visible, err := outline.ToggleByID(doc.Root, p.opts.OutlineID, p.opts.ControlID)
	if err != nil {
		return nil, false, fmt.Errorf("toggle outline in %s: %w", filename, err)
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, false, err
	}
	return out, visible, nil
}
