// Package server exposes the extraction service over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/export"
	"github.com/Sourabsb/tbi-hackathon/internal/pipeline"
	"github.com/Sourabsb/tbi-hackathon/internal/store"
)

// Server wires the HTTP surface to the pipeline, store, and export service.
type Server struct {
	cfg      *common.Config
	store    store.Store
	pipe     *pipeline.Pipeline
	exporter *export.Service
	logger   *slog.Logger
	engine   *gin.Engine
	httpSrv  *http.Server
}

func New(cfg *common.Config, st store.Store, pipe *pipeline.Pipeline, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		pipe:     pipe,
		exporter: exporter,
		logger:   logger,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", s.handleRoot)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The frontend historically called both bare and /api-prefixed paths.
	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.POST("/upload", s.handleUpload)
		g.GET("/jobs", s.handleListJobs)
		g.GET("/result/:job_id", s.handleResult)
		g.POST("/export/:job_id", s.handleExport)
		g.GET("/health", s.handleHealth)
	}
	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// requestLogger logs one line per request with a generated request id.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := uuid.New().String()
		start := time.Now()
		c.Set("req_id", rid)

		c.Next()

		s.logger.Info("http.request",
			"req_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.httpSrv = &http.Server{
		Addr:        s.cfg.Server.Addr,
		Handler:     s.engine,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	s.logger.Info("http.listen", "addr", s.cfg.Server.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
