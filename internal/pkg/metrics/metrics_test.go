package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormCounters(t *testing.T) {
	m := New()

	m.IncrementFormsOpened()
	m.IncrementFormsOpened()
	m.SetOpenForms(1)
	m.AddFormsExpired(1)
	m.AddFormsExpired(0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.FormsOpened))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpenForms))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FormsExpired))
}

func TestSubmissionMetrics(t *testing.T) {
	m := New()

	start := m.SubmissionStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SubmissionsPending))

	m.SubmissionFinished(start.Add(-10*time.Millisecond), OutcomeSuccess)
	m.IncrementSubmission(OutcomeInvalid)

	assert.Equal(t, float64(0), testutil.ToFloat64(m.SubmissionsPending))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues(OutcomeInvalid)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncrementFieldError("member2.email", "invalid_email")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hackfest_field_validation_failures_total{field="member2.email",reason="invalid_email"} 1`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.IncrementFormsOpened()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.FormsOpened))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.FormsOpened))
}
