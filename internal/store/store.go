// Package store persists custom field definitions, mapping templates,
// committed candidates and the import audit trail in PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/JonMunkholm/candidate-import/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Store implements core.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const selectCustomFields = `
SELECT field_name, field_label, field_type, is_required, options
FROM job_custom_fields
WHERE job_id = $1
ORDER BY position, field_name`

// CustomFields returns the custom field definitions of a job in display order.
func (s *Store) CustomFields(ctx context.Context, jobID string) ([]core.CustomFieldDefinition, error) {
	rows, err := s.pool.Query(ctx, selectCustomFields, jobID)
	if err != nil {
		return nil, fmt.Errorf("query custom fields: %w", err)
	}
	defer rows.Close()

	fields := make([]core.CustomFieldDefinition, 0)
	for rows.Next() {
		var (
			f       core.CustomFieldDefinition
			typ     string
			options []byte
		)
		if err := rows.Scan(&f.FieldName, &f.FieldLabel, &typ, &f.IsRequired, &options); err != nil {
			return nil, fmt.Errorf("scan custom field: %w", err)
		}
		f.FieldType = core.FieldType(typ)
		if len(options) > 0 {
			if err := json.Unmarshal(options, &f.Options); err != nil {
				return nil, fmt.Errorf("decode options of %s: %w", f.FieldName, err)
			}
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read custom fields: %w", err)
	}
	return fields, nil
}

// candidateColumns is the insert column list; candidateRow must match it.
var candidateColumns = []string{
	"id", "job_id", "import_id", "source_row",
	"name", "email", "mobile_phone", "resume_url", "location",
	"experience_months", "current_salary", "expected_salary", "salary_currency",
	"available_to_join_days", "custom_fields",
}

var insertCandidate = func() string {
	params := make([]string, len(candidateColumns))
	for i := range params {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO candidates (" + strings.Join(candidateColumns, ", ") + ")\n" +
		"VALUES (" + strings.Join(params, ", ") + ")\n" +
		"ON CONFLICT (job_id, lower(email)) DO NOTHING"
}()

// InsertCandidates inserts a batch in one transaction. Rows whose email
// already exists for the job are skipped and reported by row index; any
// other failure rolls back the whole batch.
func (s *Store) InsertCandidates(ctx context.Context, batch core.CandidateBatch) (core.InsertResult, error) {
	var result core.InsertResult
	importID, err := uuid.Parse(batch.ImportID)
	if err != nil {
		return result, fmt.Errorf("invalid import id: %w", err)
	}

	queued := &pgx.Batch{}
	for _, c := range batch.Candidates {
		row, err := candidateRow(batch.JobID, importID, c)
		if err != nil {
			return result, err
		}
		queued.Queue(insertCandidate, row...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, queued)
	for _, c := range batch.Candidates {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return core.InsertResult{}, fmt.Errorf("insert candidate row %d: %w", c.RowIndex, err)
		}
		if tag.RowsAffected() == 0 {
			result.Duplicates = append(result.Duplicates, c.RowIndex)
			continue
		}
		result.Inserted++
	}
	if err := br.Close(); err != nil {
		return core.InsertResult{}, fmt.Errorf("insert candidates: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return core.InsertResult{}, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// DeleteImportedCandidates removes the candidates inserted by one import.
// A malformed import ID matches nothing.
func (s *Store) DeleteImportedCandidates(ctx context.Context, importID string) (int64, error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM candidates WHERE import_id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete candidates: %w", err)
	}
	return tag.RowsAffected(), nil
}

// candidateRow converts a preview to insert arguments. Optional text is stored
// as NULL when blank.
func candidateRow(jobID string, importID uuid.UUID, c core.CandidatePreview) ([]any, error) {
	custom, err := json.Marshal(c.CustomFields)
	if err != nil {
		return nil, fmt.Errorf("encode custom fields of row %d: %w", c.RowIndex, err)
	}
	if c.CustomFields == nil {
		custom = []byte("{}")
	}

	var experience pgtype.Int4
	if c.ExperienceMonths != nil {
		if *c.ExperienceMonths < math.MinInt32 || *c.ExperienceMonths > math.MaxInt32 {
			return nil, fmt.Errorf("experience of row %d out of range: %d months", c.RowIndex, *c.ExperienceMonths)
		}
		experience = pgtype.Int4{Int32: int32(*c.ExperienceMonths), Valid: true}
	}

	return []any{
		uuid.New(),
		jobID,
		importID,
		int32(c.RowIndex),
		c.Name,
		c.Email,
		nullText(c.MobilePhone),
		nullText(c.ResumeURL),
		nullText(c.Location),
		experience,
		numeric(c.CurrentSalary),
		numeric(c.ExpectedSalary),
		nullText(c.SalaryCurrency),
		numeric(c.AvailableToJoinDays),
		custom,
	}, nil
}

func nullText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}

func numeric(f *float64) pgtype.Numeric {
	var n pgtype.Numeric
	if f == nil {
		return n
	}
	if err := n.Scan(strconv.FormatFloat(*f, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

const insertTemplate = `
INSERT INTO mapping_templates (id, job_id, name, mapping, csv_headers, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING id, job_id, name, mapping, csv_headers, created_at, updated_at`

// CreateTemplate inserts a mapping template with a fresh ID.
func (s *Store) CreateTemplate(ctx context.Context, t core.ImportTemplate) (*core.ImportTemplate, error) {
	mapping, err := json.Marshal(t.Mapping)
	if err != nil {
		return nil, fmt.Errorf("marshal mapping: %w", err)
	}
	headers := t.CSVHeaders
	if headers == nil {
		headers = []string{}
	}
	headersJSON, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("marshal headers: %w", err)
	}

	row := s.pool.QueryRow(ctx, insertTemplate, uuid.New(), t.JobID, t.Name, mapping, headersJSON, time.Now().UTC())
	created, err := scanTemplate(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "mapping_templates_job_name_unique" {
			return nil, fmt.Errorf("%w: %q", core.ErrTemplateExists, t.Name)
		}
		return nil, err
	}
	return created, nil
}

const selectTemplate = `
SELECT id, job_id, name, mapping, csv_headers, created_at, updated_at
FROM mapping_templates`

// GetTemplate returns core.ErrTemplateNotFound for unknown IDs.
func (s *Store) GetTemplate(ctx context.Context, id string) (*core.ImportTemplate, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidTemplateID, err)
	}
	t, err := scanTemplate(s.pool.QueryRow(ctx, selectTemplate+" WHERE id = $1", uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrTemplateNotFound
	}
	return t, err
}

// ListTemplates returns a job's templates, most recently updated first.
func (s *Store) ListTemplates(ctx context.Context, jobID string) ([]core.ImportTemplate, error) {
	rows, err := s.pool.Query(ctx, selectTemplate+" WHERE job_id = $1 ORDER BY updated_at DESC, name", jobID)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := make([]core.ImportTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if errors.Is(err, errTemplateDecode) {
			logging.FromContext(ctx).Warn("skipping unreadable mapping template", "job_id", jobID, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// DeleteTemplate returns core.ErrTemplateNotFound when nothing was deleted.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidTemplateID, err)
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM mapping_templates WHERE id = $1", uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrTemplateNotFound
	}
	return nil
}

// errTemplateDecode marks a stored template whose JSON no longer decodes.
var errTemplateDecode = errors.New("undecodable template")

func scanTemplate(row pgx.Row) (*core.ImportTemplate, error) {
	var (
		id               pgtype.UUID
		t                core.ImportTemplate
		mapping, headers []byte
		created, updated pgtype.Timestamptz
	)
	if err := row.Scan(&id, &t.JobID, &t.Name, &mapping, &headers, &created, &updated); err != nil {
		return nil, err
	}
	if id.Valid {
		t.ID = uuid.UUID(id.Bytes).String()
	}
	if err := json.Unmarshal(mapping, &t.Mapping); err != nil {
		return nil, fmt.Errorf("%w %s: mapping: %v", errTemplateDecode, t.ID, err)
	}
	if err := json.Unmarshal(headers, &t.CSVHeaders); err != nil {
		return nil, fmt.Errorf("%w %s: headers: %v", errTemplateDecode, t.ID, err)
	}
	if created.Valid {
		t.CreatedAt = created.Time
	}
	if updated.Valid {
		t.UpdatedAt = updated.Time
	}
	return &t, nil
}
