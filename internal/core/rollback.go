package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/candidate-import/internal/logging"
)

// RollbackResult reports how many candidates a rollback removed.
type RollbackResult struct {
	ImportID    string `json:"importId"`
	RowsDeleted int64  `json:"rowsDeleted"`
}

// RollbackImport deletes every candidate inserted by a committed import.
// An import that inserted nothing, or was already rolled back, is
// ErrImportNotFound.
func (s *Service) RollbackImport(ctx context.Context, importID string) (*RollbackResult, error) {
	if strings.TrimSpace(importID) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrImportNotFound)
	}

	deleted, err := s.store.DeleteImportedCandidates(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("rollback import: %w", err)
	}
	if deleted == 0 {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, importID)
	}

	s.logAudit(ctx, AuditEntry{
		Action:       ActionImportRollback,
		ImportID:     importID,
		RowsAffected: int(deleted),
	})
	logging.WithFields(ctx, "import_id", importID).Info("import rolled back", "deleted", deleted)

	return &RollbackResult{ImportID: importID, RowsDeleted: deleted}, nil
}
