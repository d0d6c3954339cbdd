package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dgallion1/doctoc/internal/parser"
)

// expandInputs resolves file arguments and doublestar patterns
// ("docs/**/*.md") into a sorted, de-duplicated list of supported documents.
// Plain paths must exist; patterns that match nothing are an error.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory; use a pattern such as %s", arg, filepath.Join(arg, "**", "*.html"))
			}
			if !parser.IsSupportedExtension(arg) {
				return nil, fmt.Errorf("%s: %w", arg, parser.ErrUnsupported)
			}
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		n := 0
		for _, m := range matches {
			if parser.IsSupportedExtension(m) {
				add(m)
				n++
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("pattern %q matched no supported documents", arg)
		}
	}

	sort.Strings(files)
	return files, nil
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// outputPath maps an input file to its location under dir. Relative inputs
// keep their directory structure; absolute or parent-relative ones are
// flattened to their base name. Markdown sources become .html.
func outputPath(dir, input string) string {
	rel := filepath.Clean(input)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(rel)
	}
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".md", ".markdown":
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	}
	return filepath.Join(dir, rel)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
