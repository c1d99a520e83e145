package statusserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cmdforge/internal/resilience"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestServer() *Server {
	return New(resilience.NewResilienceManager(), resilience.NewDegradationManager(), resilience.NewOfflineManager(), nil)
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDegradationEndpointReflectsState(t *testing.T) {
	degradation := resilience.NewDegradationManager()
	degradation.Degrade(resilience.FeatureMCP, resilience.ReasonCircuitOpen)
	s := New(resilience.NewResilienceManager(), degradation, resilience.NewOfflineManager(), nil)

	req := httptest.NewRequest(http.MethodGet, "/status/degradation", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "mcp")
}

func TestOfflineQueueEndpoint(t *testing.T) {
	offline := resilience.NewOfflineManager()
	offline.SetOffline(true)
	offline.QueueOperation(resilience.SyncHistoryOp{EntriesCount: 5})
	s := New(resilience.NewResilienceManager(), resilience.NewDegradationManager(), offline, nil)

	req := httptest.NewRequest(http.MethodGet, "/status/offline-queue", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sync_history")
}
