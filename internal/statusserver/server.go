// Package statusserver exposes the read-only HTTP surface spec.md §4.2
// implies: a consumer of the degradation manager, circuit breakers, and
// offline queue, plus a Prometheus metrics endpoint. It renders no UI
// of its own — it is the status surface other tools (or operators) poll.
package statusserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cmdforge/internal/observability"
	"cmdforge/internal/resilience"
)

// Server wires the resilience kernel's observable state onto a small
// gin HTTP surface.
type Server struct {
	resilienceMgr *resilience.ResilienceManager
	degradation   *resilience.DegradationManager
	offline       *resilience.OfflineManager
	metrics       *observability.Metrics
	engine        *gin.Engine
}

// New builds a Server. Pass gin.ReleaseMode via gin.SetMode before
// calling New in production; the constructor itself stays mode-agnostic.
// metrics may be nil, in which case /metrics serves an empty registry
// rather than the global default one (the status server never reports
// instruments it wasn't handed).
func New(resilienceMgr *resilience.ResilienceManager, degradation *resilience.DegradationManager, offline *resilience.OfflineManager, metrics *observability.Metrics) *Server {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{resilienceMgr: resilienceMgr, degradation: degradation, offline: offline, metrics: metrics, engine: engine}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/status/degradation", s.handleDegradation)
	s.engine.GET("/status/circuits", s.handleCircuits)
	s.engine.GET("/status/offline-queue", s.handleOfflineQueue)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
}

// Handler returns the underlying http.Handler, for use with a custom
// http.Server (TLS, timeouts) rather than gin's own Run.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) handleDegradation(c *gin.Context) {
	statuses := s.degradation.Status()
	out := make([]gin.H, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, gin.H{
			"feature": st.Feature.String(),
			"reason":  st.Reason.String(),
			"since":   st.Since.UTC(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"degraded_features": out})
}

func (s *Server) handleCircuits(c *gin.Context) {
	summary := s.resilienceMgr.StatusSummary()
	out := make(gin.H, len(summary))
	for feature, state := range summary {
		out[feature.String()] = state.String()
	}
	c.JSON(http.StatusOK, gin.H{"circuits": out})
}

func (s *Server) handleOfflineQueue(c *gin.Context) {
	queue := s.offline.Queue()
	out := make([]gin.H, 0, len(queue))
	for _, op := range queue {
		out = append(out, gin.H{"kind": op.Kind()})
	}
	c.JSON(http.StatusOK, gin.H{"offline": s.offline.IsOffline(), "depth": len(queue), "queue": out})
}
