package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"edgevision/internal/config"
	"edgevision/internal/debug/timing"
	"edgevision/internal/logger"
	"edgevision/internal/models"
	"edgevision/internal/opencv/memory"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
)

const component = "HTTPServer"

// Processor is the core the HTTP layer drives.
type Processor interface {
	Process(ctx context.Context, data []byte, algorithm string, params map[string]interface{}) ([]byte, error)
	Histogram(data []byte) ([]int, error)
}

type Server struct {
	cfg       config.ServerConfig
	processor Processor
	repo      *models.ImageRepository
	logger    logger.Logger
	timing    *timing.Tracker
	memory    *memory.Tracker
	engine    *gin.Engine
}

type Option func(*Server)

// WithStats exposes tracker data on GET /stats.
func WithStats(t *timing.Tracker, m *memory.Tracker) Option {
	return func(s *Server) {
		s.timing = t
		s.memory = m
	}
}

func New(cfg config.ServerConfig, processor Processor, repo *models.ImageRepository, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		processor: processor,
		repo:      repo,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.MaxMultipartMemory = cfg.MaxUploadBytes
	s.engine.Use(gin.Recovery(), s.requestLogger(), corsMiddleware(cfg.AllowedOrigins))
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/stats", s.handleStats)
	s.engine.GET("/algorithms", s.handleAlgorithms)

	s.engine.POST("/upload", s.handleUpload)
	s.engine.POST("/process/:id", s.handleProcess)
	s.engine.GET("/histogram/:id", s.handleHistogram)
	s.engine.DELETE("/images/:id", s.handleDelete)
}

// Handler returns the routed engine, gzip-wrapped when enabled.
func (s *Server) Handler() http.Handler {
	if s.cfg.Gzip {
		return gzhttp.GzipHandler(s.engine)
	}
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(component, "listening", map[string]interface{}{"addr": s.cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info(component, "shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug(component, "request", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func sendError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error":   http.StatusText(statusCode),
		"message": message,
	})
}
