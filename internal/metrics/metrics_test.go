package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ImportPreviewed(t *testing.T) {
	r := New()
	r.ImportPreviewed("job-1", core.PreviewSummary{TotalRows: 5, ValidRows: 3, InvalidRows: 2}, 20*time.Millisecond)
	r.ImportPreviewed("job-2", core.PreviewSummary{TotalRows: 1, ValidRows: 1}, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.previews))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.rows.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rows.WithLabelValues("invalid")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.previewTime))
}

func TestRecorder_NoPerJobSeries(t *testing.T) {
	r := New()
	for i := 0; i < 50; i++ {
		r.ImportPreviewed(fmt.Sprintf("job-%d", i), core.PreviewSummary{TotalRows: 1, ValidRows: 1}, time.Millisecond)
	}

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "candidate_import_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				assert.NotEqual(t, "job_id", l.GetName(), "%s carries a job_id label", mf.GetName())
			}
		}
	}
	assert.Equal(t, 1, testutil.CollectAndCount(r.previews))
}

func TestRecorder_ImportCommitted(t *testing.T) {
	r := New()
	r.ImportCommitted("job-1", 7)
	r.ImportCommitted("job-1", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.commits))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.committedRows))
}

func TestRecorder_ImportFailed(t *testing.T) {
	r := New()
	r.ImportFailed("parse", core.ErrEmptyFile)
	r.ImportFailed("limit", core.ErrTooManyImports)
	r.ImportFailed("commit", errors.New("???"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("parse", "FILE002")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("limit", "IMP001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("commit", "ERR000")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.TrackSessions(func() int { return 4 })
	r.ImportCommitted("job-1", 1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "candidate_import_commits_total 1"))
	assert.True(t, strings.Contains(body, "candidate_import_sessions_active 4"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
