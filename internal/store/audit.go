package store

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ core.AuditStore = (*Store)(nil)

const insertAudit = `
INSERT INTO import_audit_log
    (id, action, severity, job_id, import_id, template_id, file_name,
     rows_affected, rows_skipped, ip_address, user_agent, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// InsertAuditEntry writes one audit entry. Unparsable client IPs are
// stored as NULL.
func (s *Store) InsertAuditEntry(ctx context.Context, e core.AuditEntry) error {
	var ip *netip.Addr
	if addr, err := netip.ParseAddr(e.IPAddress); err == nil {
		ip = &addr
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, insertAudit,
		uuid.New(),
		string(e.Action),
		string(e.Severity),
		nullText(e.JobID),
		nullUUID(e.ImportID),
		nullText(e.TemplateID),
		nullText(e.FileName),
		e.RowsAffected,
		e.RowsSkipped,
		ip,
		nullText(e.UserAgent),
		nullText(e.Reason),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectAudit = `
SELECT id, action, severity, job_id, import_id, template_id, file_name,
       rows_affected, rows_skipped, host(ip_address), user_agent, reason, created_at
FROM import_audit_log`

// ListAuditEntries returns entries matching f, newest first.
func (s *Store) ListAuditEntries(ctx context.Context, f core.AuditFilter) ([]core.AuditEntry, error) {
	query, args := auditQuery(f)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// auditQuery builds the filtered, paginated select for f.
func auditQuery(f core.AuditFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.JobID != "" {
		add("job_id = $%d", f.JobID)
	}
	if f.ImportID != "" {
		if id, err := uuid.Parse(f.ImportID); err == nil {
			add("import_id = $%d", id)
		} else {
			where = append(where, "FALSE")
		}
	}
	if f.Action != "" {
		add("action = $%d", string(f.Action))
	}

	var b strings.Builder
	b.WriteString(selectAudit)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id")

	args = append(args, f.Limit)
	b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, f.Offset)
	b.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	return b.String(), args
}

func scanAudit(row pgx.Row) (core.AuditEntry, error) {
	var (
		e                                        core.AuditEntry
		id                                       uuid.UUID
		importID                                 pgtype.UUID
		action, severity                         string
		jobID, templateID, fileName, ip, ua, why pgtype.Text
	)
	err := row.Scan(&id, &action, &severity, &jobID, &importID, &templateID, &fileName,
		&e.RowsAffected, &e.RowsSkipped, &ip, &ua, &why, &e.CreatedAt)
	if err != nil {
		return e, fmt.Errorf("scan audit entry: %w", err)
	}

	e.ID = id.String()
	e.Action = core.AuditAction(action)
	e.Severity = core.AuditSeverity(severity)
	e.JobID = jobID.String
	e.TemplateID = templateID.String
	e.FileName = fileName.String
	e.IPAddress = ip.String
	e.UserAgent = ua.String
	e.Reason = why.String
	if importID.Valid {
		e.ImportID = uuid.UUID(importID.Bytes).String()
	}
	return e, nil
}

// PurgeAuditEntries deletes entries created before the cutoff.
func (s *Store) PurgeAuditEntries(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM import_audit_log WHERE created_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullUUID(s string) pgtype.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
