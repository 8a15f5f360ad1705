package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/JonMunkholm/candidate-import/internal/export"
	"github.com/JonMunkholm/candidate-import/internal/web/views"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size limit for the form
// envelope and the mapping field.
const multipartOverhead = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.ActiveSessions(),
	})
}

func (s *Server) handleStandardFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, core.StandardFields)
}

func (s *Server) handleLimiterStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.LimiterStatus())
}

func (s *Server) handleCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.service.CustomFields(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, fields)
}

// handleRefreshCustomFields reloads a job's definitions past the cache.
func (s *Server) handleRefreshCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.service.RefreshCustomFields(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, fields)
}

// handleTemplateCSV serves a header-only CSV listing every field of the job.
func (s *Server) handleTemplateCSV(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	fields, err := s.service.CustomFields(r.Context(), jobID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(core.TemplateHeaders(fields)); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="candidates-%s.csv"`, safeFileName(jobID)))
	_, _ = w.Write(buf.Bytes())
}

type suggestRequest struct {
	Headers []string `json:"headers"`
}

func (s *Server) handleSuggestMapping(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	fields, err := s.service.CustomFields(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"mapping": core.SuggestMapping(req.Headers, fields),
	})
}

// handlePreview accepts a multipart upload with a "file" part and a
// "mapping" JSON field, and returns the preview as JSON or, for HTMX, as a
// table fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" {
		respondError(w, r, fmt.Errorf("not a csv file: %s", header.Filename), http.StatusBadRequest)
		return
	}

	var mapping core.FieldMapping
	if err := json.Unmarshal([]byte(r.FormValue("mapping")), &mapping); err != nil {
		respondError(w, r, fmt.Errorf("invalid mapping: %w", err), http.StatusBadRequest)
		return
	}

	resp, err := s.service.PreviewImport(r.Context(), core.PreviewRequest{
		JobID:    chi.URLParam(r, "jobID"),
		FileName: header.Filename,
		File:     file,
		Mapping:  mapping,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = views.PreviewTable(resp).Render(r.Context(), w)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Session(chi.URLParam(r, "importID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardImport(chi.URLParam(r, "importID")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commitRequest struct {
	Exclude []int `json:"exclude"`
}

// handleCommit inserts the valid rows of a preview. The body is optional;
// HTMX posts none.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if r.ContentLength != 0 && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
			return
		}
	}

	result, err := s.service.CommitImport(r.Context(), chi.URLParam(r, "importID"), req.Exclude)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = views.CommitResult(result).Render(r.Context(), w)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.RollbackImport(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleAuditLog lists audit entries filtered by job_id, import_id and
// action, paginated with limit and offset.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := s.service.AuditLog(r.Context(), core.AuditFilter{
		JobID:    q.Get("job_id"),
		ImportID: q.Get("import_id"),
		Action:   core.AuditAction(q.Get("action")),
		Limit:    parseIntParam(r, "limit", core.DefaultAuditLimit),
		Offset:   parseIntParam(r, "offset", 0),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// parseIntParam returns the query parameter as a non-negative int, or def.
func parseIntParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// handleIssuesReport downloads the preview of a live session as a workbook.
func (s *Server) handleIssuesReport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.Session(chi.URLParam(r, "importID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteIssuesReport(&buf, resp); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	name := strings.TrimSuffix(safeFileName(resp.FileName), filepath.Ext(resp.FileName))
	if name == "" {
		name = "import"
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-issues.xlsx"`, name))
	_, _ = w.Write(buf.Bytes())
}

// safeFileName keeps characters that are safe inside a quoted
// Content-Disposition filename.
func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}
