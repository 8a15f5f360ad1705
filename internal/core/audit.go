package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/logging"
)

// AuditAction is the kind of operation recorded in the audit trail.
type AuditAction string

const (
	ActionImportPreview  AuditAction = "import_preview"
	ActionImportCommit   AuditAction = "import_commit"
	ActionImportRollback AuditAction = "import_rollback"
	ActionTemplateCreate AuditAction = "template_create"
	ActionTemplateDelete AuditAction = "template_delete"
)

// AuditSeverity ranks audit entries for review.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImportCommit, ActionImportRollback:
		return SeverityHigh
	case ActionTemplateCreate, ActionTemplateDelete:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// AuditEntry is one recorded operation.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	JobID        string        `json:"jobId,omitempty"`
	ImportID     string        `json:"importId,omitempty"`
	TemplateID   string        `json:"templateId,omitempty"`
	FileName     string        `json:"fileName,omitempty"`
	RowsAffected int           `json:"rowsAffected"`
	RowsSkipped  int           `json:"rowsSkipped"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// AuditFilter selects audit entries. Empty fields match everything.
type AuditFilter struct {
	JobID    string
	ImportID string
	Action   AuditAction
	Limit    int
	Offset   int
}

// Audit list page sizes.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditStore persists the audit trail.
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, e AuditEntry) error
	ListAuditEntries(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
	PurgeAuditEntries(ctx context.Context, before time.Time) (int64, error)
}

// logAudit records an entry when an audit store is configured. Failures are
// logged and never returned.
func (s *Service) logAudit(ctx context.Context, e AuditEntry) {
	if s.audit == nil {
		return
	}
	e.Severity = determineSeverity(e.Action)
	e.IPAddress = ClientIPFromContext(ctx)
	e.UserAgent = UserAgentFromContext(ctx)
	e.CreatedAt = s.now().UTC()

	if err := s.audit.InsertAuditEntry(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("audit write failed",
			"action", e.Action,
			"import_id", e.ImportID,
			"error", err,
		)
	}
}

// AuditLog lists audit entries newest first. Without an audit store it
// returns an empty list.
func (s *Service) AuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	if s.audit == nil {
		return []AuditEntry{}, nil
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultAuditLimit
	case f.Limit > MaxAuditLimit:
		f.Limit = MaxAuditLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.audit.ListAuditEntries(ctx, f)
}
