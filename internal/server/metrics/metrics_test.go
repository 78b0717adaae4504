package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordRegister(ResultSuccess)
	m.RecordRegister(ResultEmailTaken)
	m.RecordRegister(ResultEmailTaken)
	m.RecordLogin(ResultInvalidCredentials)
	m.RecordTokenVerification("expired")
	m.RecordHTTPRequest(http.MethodPost, "/auth/login", http.StatusUnauthorized, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegisterTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegisterTotal.WithLabelValues(ResultEmailTaken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginTotal.WithLabelValues(ResultInvalidCredentials)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenVerificationsTotal.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRegister(ResultSuccess)
		m.RecordLogin(ResultSuccess)
		m.RecordTokenVerification(ResultSuccess)
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RecordLogin(ResultSuccess)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `taskauth_login_total{result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordRegister(ResultSuccess)

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RegisterTotal.WithLabelValues(ResultSuccess)))
}
