package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/doctoc/internal/outline"
	"github.com/dgallion1/doctoc/internal/parser"
	"github.com/dgallion1/doctoc/internal/pipeline"
)

const (
	headerVisible  = "X-Outline-Visible"
	headerHeadings = "X-Outline-Headings"
)

// handleOutline returns the uploaded document with numbered headings and a
// populated outline container.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	proc, ok := s.processorFor(w, r)
	if !ok {
		return
	}

	res, err := proc.Outline(data, filename)
	if err != nil {
		s.buildError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(headerHeadings, strconv.Itoa(res.Outline.Count()))
	w.Write(res.HTML)
}

// handleOutlineTree returns only the outline, as JSON (default), Markdown
// or indented text.
func (s *Server) handleOutlineTree(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	proc, ok := s.processorFor(w, r)
	if !ok {
		return
	}

	res, err := proc.Outline(data, filename)
	if err != nil {
		s.buildError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"outline":    res.Outline,
			"collisions": nonNil(res.Collisions),
		})
	case "markdown", "md":
		md, err := res.Outline.Markdown()
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, md)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, res.Outline.Text())
	default:
		jsonError(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}

// handleToggle flips the outline container of the uploaded document.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	proc, ok := s.processorFor(w, r)
	if !ok {
		return
	}

	out, visible, err := proc.Toggle(data, filename)
	if err != nil {
		s.buildError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(headerVisible, strconv.FormatBool(visible))
	w.Write(out)
}

// readUpload parses the multipart form and returns the "file" part.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename, data, status, err := s.readPart(header.Filename, file)
	if err != nil {
		jsonError(w, err.Error(), status)
		return "", nil, false
	}
	return filename, data, true
}

// readPart validates one uploaded file and reads it within the size limit.
func (s *Server) readPart(name string, f multipart.File) (string, []byte, int, error) {
	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, http.StatusOK, nil
}

// processorFor applies per-request id and policy overrides.
func (s *Server) processorFor(w http.ResponseWriter, r *http.Request) (*pipeline.Processor, bool) {
	proc := s.orchestrator.Processor().WithIDs(
		r.FormValue("outline_id"),
		r.FormValue("body_id"),
		r.FormValue("control_id"),
	)
	if v := r.FormValue("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, fmt.Sprintf("invalid strict value %q", v), http.StatusBadRequest)
			return nil, false
		}
		policy := outline.PolicyLenient
		if strict {
			policy = outline.PolicyStrict
		}
		proc = proc.WithPolicy(policy)
	}
	return proc, true
}

func (s *Server) buildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, outline.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, outline.ErrAlreadyBuilt):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, outline.ErrSkippedLevel):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, parser.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("outline failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
