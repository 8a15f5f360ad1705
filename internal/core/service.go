package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/logging"
	"github.com/google/uuid"
)

// ErrImportNotFound is returned for unknown or expired import sessions.
var ErrImportNotFound = errors.New("import not found")

// FieldSource loads the custom field definitions of a job opening.
type FieldSource interface {
	CustomFields(ctx context.Context, jobID string) ([]CustomFieldDefinition, error)
}

// FieldInvalidator is implemented by field sources that cache definitions.
type FieldInvalidator interface {
	Invalidate(ctx context.Context, jobID string) error
}

// CandidateBatch is a set of validated candidates committed together.
type CandidateBatch struct {
	ImportID   string
	JobID      string
	Candidates []CandidatePreview
}

// InsertResult reports what a CandidateWriter stored.
type InsertResult struct {
	Inserted int64
	// Duplicates holds the row indexes skipped because their email already
	// exists for the job.
	Duplicates []int
}

// CandidateWriter persists committed candidates.
type CandidateWriter interface {
	InsertCandidates(ctx context.Context, batch CandidateBatch) (InsertResult, error)
	// DeleteImportedCandidates removes the candidates of one import and
	// returns how many were removed.
	DeleteImportedCandidates(ctx context.Context, importID string) (int64, error)
}

// TemplateStore persists saved field mappings.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t ImportTemplate) (*ImportTemplate, error)
	GetTemplate(ctx context.Context, id string) (*ImportTemplate, error)
	ListTemplates(ctx context.Context, jobID string) ([]ImportTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// Store is everything the service needs from persistence.
type Store interface {
	FieldSource
	CandidateWriter
	TemplateStore
}

// Observer receives import outcomes, e.g. for metrics.
type Observer interface {
	ImportPreviewed(jobID string, summary PreviewSummary, elapsed time.Duration)
	ImportCommitted(jobID string, inserted int64)
	ImportFailed(stage string, err error)
}

type nopObserver struct{}

func (nopObserver) ImportPreviewed(string, PreviewSummary, time.Duration) {}
func (nopObserver) ImportCommitted(string, int64)                         {}
func (nopObserver) ImportFailed(string, error)                            {}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	SessionTTL    time.Duration
	PhonePolicy   PhonePolicy

	// Fields overrides the store as the custom field source (e.g. a cache).
	Fields   FieldSource
	Observer Observer
	// Audit records the audit trail; nil disables it.
	Audit AuditStore
}

// DefaultSessionTTL is how long a preview can be committed after creation.
const DefaultSessionTTL = 30 * time.Minute

// Service provides the core business logic for candidate imports.
type Service struct {
	store    Store
	fields   FieldSource
	observer Observer
	audit    AuditStore
	limiter  *ImportLimiter
	opts     Options
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*importSession
}

type importSession struct {
	ID        string
	JobID     string
	FileName  string
	Headers   []string
	Previews  []CandidatePreview
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	fields := opts.Fields
	if fields == nil {
		fields = store
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Service{
		store:    store,
		fields:   fields,
		observer: observer,
		audit:    opts.Audit,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*importSession),
	}
}

// PreviewRequest is the input of PreviewImport.
type PreviewRequest struct {
	JobID    string
	FileName string
	File     io.Reader
	Mapping  FieldMapping
}

// PreviewImport runs the pipeline on an uploaded file and keeps the result
// as an import session that can be committed until it expires.
func (s *Service) PreviewImport(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	start := s.now()
	if strings.TrimSpace(req.JobID) == "" {
		return nil, fmt.Errorf("job id is required")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.observer.ImportFailed("limit", err)
		return nil, err
	}
	defer s.limiter.Release()

	fields, err := s.fields.CustomFields(ctx, req.JobID)
	if err != nil {
		s.observer.ImportFailed("fields", err)
		return nil, fmt.Errorf("load custom fields: %w", err)
	}

	data, previews, err := ProcessFile(ctx, req.File, req.Mapping, fields, AssembleOptions{
		PhonePolicy: s.opts.PhonePolicy,
		MaxFileSize: s.opts.MaxFileSize,
	})
	if err != nil {
		s.observer.ImportFailed("parse", err)
		return nil, err
	}

	importID := uuid.New().String()
	now := s.now()
	session := &importSession{
		ID:        importID,
		JobID:     req.JobID,
		FileName:  req.FileName,
		Headers:   data.Headers,
		Previews:  previews,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}

	s.mu.Lock()
	s.sessions[importID] = session
	s.mu.Unlock()

	summary := Summarize(previews)
	elapsed := s.now().Sub(start)
	s.observer.ImportPreviewed(req.JobID, summary, elapsed)
	s.logAudit(ctx, AuditEntry{
		Action:       ActionImportPreview,
		JobID:        req.JobID,
		ImportID:     importID,
		FileName:     req.FileName,
		RowsAffected: summary.ValidRows,
		RowsSkipped:  summary.InvalidRows,
	})

	logging.WithFields(ctx, "import_id", importID, "job_id", req.JobID).Info("import previewed",
		"file", req.FileName,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
		"rows", summary.TotalRows,
		"valid", summary.ValidRows,
		"invalid", summary.InvalidRows,
		"custom_fields", len(fields),
		"duration_ms", elapsed.Milliseconds(),
	)

	return &PreviewResponse{
		ImportID:         importID,
		JobID:            req.JobID,
		FileName:         req.FileName,
		Headers:          data.Headers,
		Summary:          summary,
		Previews:         previews,
		ExpiresAt:        session.ExpiresAt,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}, nil
}

// Session returns a copy of the previews held by an import session.
func (s *Service) Session(importID string) (*PreviewResponse, error) {
	sess, err := s.lookup(importID)
	if err != nil {
		return nil, err
	}
	previews := make([]CandidatePreview, len(sess.Previews))
	copy(previews, sess.Previews)
	return &PreviewResponse{
		ImportID:  sess.ID,
		JobID:     sess.JobID,
		FileName:  sess.FileName,
		Headers:   sess.Headers,
		Summary:   Summarize(previews),
		Previews:  previews,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (s *Service) lookup(importID string) (*importSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[importID]
	s.mu.RUnlock()

	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	return sess, nil
}

// CommitImport inserts the valid previews of a session, minus the excluded
// row indexes. Invalid rows are never inserted, and a row whose email repeats
// an earlier row of the file or an existing candidate of the job is skipped
// as a duplicate. The session is claimed for the duration of the insert and
// consumed on success; a failed insert puts it back.
func (s *Service) CommitImport(ctx context.Context, importID string, exclude []int) (*CommitResult, error) {
	start := s.now()

	sess, err := s.claim(importID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[int]bool, len(exclude))
	for _, idx := range exclude {
		excluded[idx] = true
	}

	seen := make(map[string]bool, len(sess.Previews))
	candidates := make([]CandidatePreview, 0, len(sess.Previews))
	var duplicates []int
	for _, p := range sess.Previews {
		if !p.IsValid || excluded[p.RowIndex] {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.Email))
		if seen[key] {
			duplicates = append(duplicates, p.RowIndex)
			continue
		}
		seen[key] = true
		candidates = append(candidates, p)
	}

	var inserted int64
	if len(candidates) > 0 {
		res, err := s.store.InsertCandidates(ctx, CandidateBatch{
			ImportID:   sess.ID,
			JobID:      sess.JobID,
			Candidates: candidates,
		})
		if err != nil {
			s.restore(sess)
			s.observer.ImportFailed("commit", err)
			return nil, fmt.Errorf("insert candidates: %w", err)
		}
		inserted = res.Inserted
		duplicates = append(duplicates, res.Duplicates...)
		sort.Ints(duplicates)
	}

	skipped := len(sess.Previews) - int(inserted)
	s.observer.ImportCommitted(sess.JobID, inserted)
	s.logAudit(ctx, AuditEntry{
		Action:       ActionImportCommit,
		JobID:        sess.JobID,
		ImportID:     sess.ID,
		FileName:     sess.FileName,
		RowsAffected: int(inserted),
		RowsSkipped:  skipped,
	})

	result := &CommitResult{
		ImportID:   sess.ID,
		JobID:      sess.JobID,
		Inserted:   inserted,
		Skipped:    skipped,
		Excluded:   exclude,
		Duplicates: duplicates,
		Duration:   s.now().Sub(start),
	}

	logging.WithFields(ctx, "import_id", sess.ID, "job_id", sess.JobID).Info("import committed",
		"inserted", inserted,
		"skipped", skipped,
		"duplicates", len(duplicates),
	)

	return result, nil
}

// claim removes a live session from the map so only one commit can hold it.
func (s *Service) claim(importID string) (*importSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[importID]
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	delete(s.sessions, importID)
	return sess, nil
}

func (s *Service) restore(sess *importSession) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// DiscardImport drops a session without committing it.
func (s *Service) DiscardImport(importID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[importID]; !ok {
		return fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}
	delete(s.sessions, importID)
	return nil
}

// SweepExpired removes expired sessions and returns how many were removed.
func (s *Service) SweepExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// ActiveSessions returns the number of sessions held in memory.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CustomFields returns the custom field definitions of a job opening.
func (s *Service) CustomFields(ctx context.Context, jobID string) ([]CustomFieldDefinition, error) {
	fields, err := s.fields.CustomFields(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load custom fields: %w", err)
	}
	return fields, nil
}

// RefreshCustomFields drops any cached definitions of a job and reloads
// them. Called after the job's custom fields were edited.
func (s *Service) RefreshCustomFields(ctx context.Context, jobID string) ([]CustomFieldDefinition, error) {
	if inv, ok := s.fields.(FieldInvalidator); ok {
		if err := inv.Invalidate(ctx, jobID); err != nil {
			logging.FromContext(ctx).Warn("custom field cache invalidation failed", "job_id", jobID, "error", err)
		}
	}
	return s.CustomFields(ctx, jobID)
}

// LimiterStatus returns the current import limiter state.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight previews finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
