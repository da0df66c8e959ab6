// Package server exposes the quiz service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizcraft/internal/auth"
	"github.com/abhisek/quizcraft/internal/metrics"
	"github.com/abhisek/quizcraft/internal/service"
)

// Options configures a Server. Metrics and Health are optional.
type Options struct {
	Service     *service.Service
	Signer      *auth.Signer
	Metrics     *metrics.Metrics
	Log         *slog.Logger
	CORSOrigins []string

	// Health reports backend reachability for GET /health.
	Health func(ctx context.Context) error
}

// Server routes HTTP requests to the service.
type Server struct {
	svc     *service.Service
	signer  *auth.Signer
	metrics *metrics.Metrics
	log     *slog.Logger
	health  func(ctx context.Context) error
	engine  *gin.Engine
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		svc:     opts.Service,
		signer:  opts.Signer,
		metrics: opts.Metrics,
		log:     opts.Log,
		health:  opts.Health,
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	s.routes(r)
	s.engine = r
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.POST("/ai/generate", s.signer.Optional(), s.handleGenerate)

	required := s.signer.Required()

	q := r.Group("/api/quiz")
	{
		q.POST("/create", required, s.handleCreateQuiz)
		q.GET("/myquizzes", required, s.handleMyQuizzes)
		q.POST("/attempt", required, s.handleAttemptQuiz)
		q.GET("/:id", s.handleGetQuiz)
		q.DELETE("/:id", required, s.handleDeleteQuiz)
	}

	a := r.Group("/api/attempt", required)
	{
		a.POST("/submit", s.handleSubmitAttempt)
		a.POST("/session", s.handleStartSession)
		a.PUT("/session/:id/answers", s.handleRecordAnswer)
		a.POST("/session/:id/submit", s.handleSubmitSession)
	}

	an := r.Group("/api/analytics", required)
	{
		an.GET("/me", s.handleAnalytics)
		an.DELETE("/:id", s.handleDeleteAttempt)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// observe logs each request and records its metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		if s.metrics != nil {
			s.metrics.ObserveRequest(c.FullPath(), c.Request.Method, status, elapsed)
		}
		level := slog.LevelDebug
		if status >= 500 {
			level = slog.LevelError
		}
		s.log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", elapsed.Milliseconds(),
			"user", auth.UserID(c))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
