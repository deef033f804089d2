package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/vincentarsontaneli/data-processor-app/internal/core"
	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
	"github.com/vincentarsontaneli/data-processor-app/internal/web/views"
)

// multipartMemory is how much of a multipart form is held in memory; the
// rest spills to temporary files.
const multipartMemory = 32 << 20

// upload is a parsed processing request.
type upload struct {
	file multipart.File
	name string
	size int64
	req  core.Request
}

// readUpload parses the multipart form of /api/process and /preview.
//
// Fields: file (required), overrides (JSON object of column to type name),
// sheet, delimiter, encoding, head_rows.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Process.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || r.ContentLength > s.cfg.Process.MaxFileSize {
			return nil, core.ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}

	up := &upload{file: file, name: header.Filename, size: header.Size}

	if raw := r.FormValue("overrides"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &up.req.Overrides); err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: overrides must map column names to type names: %v", inference.ErrInvalidOverride, err)
		}
	}

	up.req.Sheet = r.FormValue("sheet")
	up.req.Encoding = r.FormValue("encoding")
	up.req.Delimiter = parseDelimiter(r.FormValue("delimiter"))
	if n, err := strconv.Atoi(r.FormValue("head_rows")); err == nil && n > 0 {
		up.req.HeadRows = n
	}
	return up, nil
}

// parseDelimiter accepts a single character, or "tab" / "\t".
func parseDelimiter(s string) rune {
	switch strings.ToLower(s) {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// handleProcess runs an uploaded file and returns the JSON result.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer up.file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ProcessUpload(ctx, up.name, up.file, up.size, up.req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handlePreview runs an uploaded file and renders the head rows as HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer up.file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ProcessUpload(ctx, up.name, up.file, up.size, up.req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.render(w, r, views.Preview(up.name, res))
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, views.UploadPage(core.Types()))
}

// handleTypes lists the semantic types and their allowed conversions.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Types())
}

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	Status  string             `json:"status"`
	Uptime  string             `json:"uptime"`
	Runs    core.LimiterStatus `json:"runs"`
	Profile string             `json:"profile"`
}

// handleHealth reports liveness and run capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	profile := s.cfg.Inference.Profile
	if profile == "" {
		profile = "default"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Runs:    s.service.Status(),
		Profile: profile,
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}
