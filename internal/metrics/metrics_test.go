package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New("cleanease")
	m.OTPIssued.Inc()
	m.OTPVerifications.WithLabelValues("success").Inc()
	m.OTPVerifications.WithLabelValues("invalid").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPIssued))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPVerifications.WithLabelValues("invalid")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cleanease_otp_issued_total 1"))
}

func TestNewNop_IndependentRegistries(t *testing.T) {
	a := NewNop()
	b := NewNop()
	a.RatingsAdded.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RatingsAdded))
}
