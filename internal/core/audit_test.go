package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudit struct {
	mu        sync.Mutex
	entries   []AuditEntry
	lastQuery AuditFilter
	insertErr error
	purgedAt  []time.Time
}

func (a *fakeAudit) InsertAuditEntry(_ context.Context, e AuditEntry) error {
	if a.insertErr != nil {
		return a.insertErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) ListAuditEntries(_ context.Context, f AuditFilter) ([]AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastQuery = f
	return a.entries, nil
}

func (a *fakeAudit) PurgeAuditEntries(_ context.Context, before time.Time) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purgedAt = append(a.purgedAt, before)
	return 0, nil
}

func (a *fakeAudit) actions() []AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditAction, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

func TestAudit_ImportLifecycle(t *testing.T) {
	audit := &fakeAudit{}
	store := newFakeStore()
	svc := NewService(store, Options{Audit: audit})

	ctx := ContextWithClient(context.Background(), "10.0.0.7", "curl/8")
	resp, err := svc.PreviewImport(ctx, PreviewRequest{
		JobID:    "job-1",
		FileName: "c.csv",
		File:     strings.NewReader(sampleCSV),
		Mapping:  sampleMapping,
	})
	require.NoError(t, err)

	_, err = svc.CommitImport(ctx, resp.ImportID, nil)
	require.NoError(t, err)

	rb, err := svc.RollbackImport(ctx, resp.ImportID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rb.RowsDeleted)

	assert.Equal(t, []AuditAction{ActionImportPreview, ActionImportCommit, ActionImportRollback}, audit.actions())

	commit := audit.entries[1]
	assert.Equal(t, SeverityHigh, commit.Severity)
	assert.Equal(t, 2, commit.RowsAffected)
	assert.Equal(t, 1, commit.RowsSkipped)
	assert.Equal(t, "10.0.0.7", commit.IPAddress)
	assert.Equal(t, "curl/8", commit.UserAgent)
	assert.Equal(t, "c.csv", commit.FileName)

	_, err = svc.RollbackImport(ctx, resp.ImportID)
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestAudit_WriteFailureIgnored(t *testing.T) {
	svc := NewService(newFakeStore(), Options{Audit: &fakeAudit{insertErr: errors.New("connection refused")}})

	resp := previewSample(t, svc)
	_, err := svc.CommitImport(context.Background(), resp.ImportID, nil)
	assert.NoError(t, err)
}

func TestAudit_Templates(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewService(newFakeStore(), Options{Audit: audit})
	ctx := context.Background()

	tpl, err := svc.CreateTemplate(ctx, ImportTemplate{JobID: "job-1", Name: "Agency", Mapping: sampleMapping})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTemplate(ctx, tpl.ID))

	require.Len(t, audit.entries, 2)
	assert.Equal(t, ActionTemplateCreate, audit.entries[0].Action)
	assert.Equal(t, SeverityLow, audit.entries[0].Severity)
	assert.Equal(t, tpl.ID, audit.entries[1].TemplateID)
}

func TestAuditLog_Limits(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultAuditLimit},
		{-3, DefaultAuditLimit},
		{20, 20},
		{10000, MaxAuditLimit},
	}
	for _, tt := range tests {
		audit := &fakeAudit{}
		svc := NewService(newFakeStore(), Options{Audit: audit})
		_, err := svc.AuditLog(context.Background(), AuditFilter{Limit: tt.in, Offset: -1})
		require.NoError(t, err)
		assert.Equal(t, tt.want, audit.lastQuery.Limit, "limit %d", tt.in)
		assert.Equal(t, 0, audit.lastQuery.Offset)
	}
}

func TestAuditLog_Disabled(t *testing.T) {
	svc := NewService(newFakeStore(), Options{})
	entries, err := svc.AuditLog(context.Background(), AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRollbackImport_Unknown(t *testing.T) {
	svc := NewService(newFakeStore(), Options{})
	_, err := svc.RollbackImport(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrImportNotFound)
	_, err = svc.RollbackImport(context.Background(), " ")
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestStartAuditRetention(t *testing.T) {
	audit := &fakeAudit{}
	svc := NewService(newFakeStore(), Options{Audit: audit})
	fixed := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartAuditRetention(ctx, AuditRetention{Days: 30, Interval: 5 * time.Millisecond})
		close(done)
	}()

	assert.Eventually(t, func() bool {
		audit.mu.Lock()
		defer audit.mu.Unlock()
		return len(audit.purgedAt) >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	audit.mu.Lock()
	defer audit.mu.Unlock()
	assert.Equal(t, fixed.AddDate(0, 0, -30), audit.purgedAt[0])
}
