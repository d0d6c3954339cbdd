package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsupported is returned for file extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file extension")

// Document is a parsed HTML document ready for outlining.
type Document struct {
	Root     *html.Node
	Title    string // From <title>, the first Markdown h1, or the filename
	Filename string
	Untitled bool // Title fell back to the filename
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.Root); err != nil {
		return fmt.Errorf("render %s: %w", d.Filename, err)
	}
	return nil
}

// Bytes renders the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options shape how documents are loaded.
type Options struct {
	// Sanitize runs input HTML through a bluemonday policy before parsing.
	Sanitize bool

	// Container ids written into the page generated for Markdown input.
	OutlineID string
	BodyID    string
	ControlID string
}

// DefaultOptions returns the ids used when none are configured.
func DefaultOptions() Options {
	return Options{
		OutlineID: "toc",
		BodyID:    "content",
		ControlID: "toc-toggle",
	}
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm", ".xhtml":
		return &HTMLParser{Sanitize: opts.Sanitize}, nil
	case ".md", ".markdown":
		return NewMarkdownParser(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func trimExt(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
