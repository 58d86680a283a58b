package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRPC(t *testing.T) {
	m := New()
	m.ObserveRPC("/svc/Login", "OK", 10*time.Millisecond)
	m.ObserveRPC("/svc/Login", "OK", 20*time.Millisecond)
	m.ObserveRPC("/svc/Login", "Unauthenticated", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/svc/Login", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/svc/Login", "Unauthenticated")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestObserveSession(t *testing.T) {
	m := New()
	m.ObserveSession("refresh", true)
	m.ObserveSession("refresh", false)
	m.ObserveSession("refresh", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionEvents.WithLabelValues("refresh", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionEvents.WithLabelValues("refresh", "failure")))
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a, b := New(), New()
	a.ObserveSession("login", true)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sessionEvents.WithLabelValues("login", "success")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRPC("/svc/Ping", "OK", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `sessionkeeper_grpc_requests_total{code="OK",method="/svc/Ping"} 1`), body)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0", logging.NewNopLogger()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
