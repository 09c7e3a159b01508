package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/rewriting"
)

func TestObserver(t *testing.T) {
	m := New()
	m.BulletProcessed(rewriting.OutcomeRewritten)
	m.BulletProcessed(rewriting.OutcomeRewritten)
	m.BulletProcessed(rewriting.OutcomeFallback)
	m.CandidatesRejected(3)
	m.CandidatesRejected(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bulletsTotal.WithLabelValues("rewritten")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bulletsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.candidatesRejected))
}

func TestMiddleware(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("POST", "/match", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestInFlight))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RateLimited()
	m.BulletProcessed(rewriting.OutcomeSkipped)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "resume_tailor_http_rate_limited_total 1")
	assert.Contains(t, string(body), `resume_tailor_rewrite_bullets_total{outcome="skipped"} 1`)
}
