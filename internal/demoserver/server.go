package demoserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kubechargeback/cbdash/internal/domain"
	"github.com/kubechargeback/cbdash/internal/infrastructure/api"
	"github.com/kubechargeback/cbdash/internal/report"
)

// Server serves a ReportsRepo over the reporting API routes.
type Server struct {
	engine *gin.Engine
	server *http.Server
	repo   domain.ReportsRepo
	log    *zap.Logger
}

func New(addr string, repo domain.ReportsRepo, log *zap.Logger, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, repo: repo, log: log}
	engine.Use(s.accessLog())
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) setupRoutes() {
	r := s.engine.Group("/api/v1/reports")
	r.GET("/allocations", s.allocations)
	r.GET("/allocations/export", s.exportAllocations)
	r.GET("/compliance", s.compliance)
	r.GET("/alerts", s.alerts)
	r.GET("/top-apps", s.topApps)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting demo API server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "demo server failed")
	case <-ctx.Done():
	}

	s.log.Info("Shutting down demo API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) allocations(c *gin.Context) {
	groupBy := c.Query("groupBy")
	if groupBy == "" {
		badRequest(c, "Missing params")
		return
	}
	w, ok := requireWindow(c)
	if !ok {
		return
	}
	out, err := s.repo.Allocations(c.Request.Context(), w, domain.GroupBy(groupBy))
	s.respond(c, out, err)
}

func (s *Server) exportAllocations(c *gin.Context) {
	groupBy := c.Query("groupBy")
	if groupBy == "" {
		badRequest(c, "Missing params")
		return
	}
	w, ok := requireWindow(c)
	if !ok {
		return
	}
	out, err := s.repo.Allocations(c.Request.Context(), w, domain.GroupBy(groupBy))
	if err != nil {
		s.respond(c, nil, err)
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="allocations.csv"`)
	c.Status(http.StatusOK)
	if err := report.WriteAllocationsCSV(c.Writer, out); err != nil {
		s.log.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) compliance(c *gin.Context) {
	// both bounds are optional here, as in the reporting API
	var w domain.Window
	for _, b := range []struct {
		key string
		dst *time.Time
	}{{"from", &w.From}, {"to", &w.To}} {
		raw := c.Query(b.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		*b.dst = t
	}
	out, err := s.repo.Compliance(c.Request.Context(), w)
	s.respond(c, out, err)
}

func (s *Server) alerts(c *gin.Context) {
	limit, ok := queryLimit(c, 50)
	if !ok {
		return
	}
	out, err := s.repo.Alerts(c.Request.Context(), limit)
	s.respond(c, out, err)
}

func (s *Server) topApps(c *gin.Context) {
	w, ok := requireWindow(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c, 10)
	if !ok {
		return
	}
	out, err := s.repo.TopApps(c.Request.Context(), w, limit)
	s.respond(c, out, err)
}

func (s *Server) respond(c *gin.Context, body interface{}, err error) {
	if err != nil {
		s.log.Error("report query failed", zap.String("path", c.FullPath()), zap.Error(err))
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func requireWindow(c *gin.Context) (domain.Window, bool) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		badRequest(c, "Missing params")
		return domain.Window{}, false
	}
	f, err := time.Parse(time.RFC3339Nano, from)
	if err != nil {
		badRequest(c, err.Error())
		return domain.Window{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, to)
	if err != nil {
		badRequest(c, err.Error())
		return domain.Window{}, false
	}
	if f.After(t) {
		badRequest(c, "from > to")
		return domain.Window{}, false
	}
	return domain.Window{From: f, To: t}, true
}

func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "invalid limit")
		return 0, false
	}
	return n, true
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Routes lists the served report paths, for logging at startup.
func Routes() []string {
	return []string{api.PathAllocations, api.PathAllocationsExport, api.PathCompliance, api.PathAlerts, api.PathTopApps}
}
