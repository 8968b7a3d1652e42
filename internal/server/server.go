// Package server exposes the loader over HTTP.
//
//	POST /v1/load   {"raw": "...", "source": "..."}
//	GET  /healthz
//
// A repaired payload answers 200 with the value and its session trail; a
// failed one answers 422 with the error, the outcome and the trail.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/providers/observability"
)

// DefaultMaxBodyBytes bounds the request body of /v1/load.
const DefaultMaxBodyBytes = 4 << 20

const shutdownTimeout = 5 * time.Second

// Server serves a Loader over HTTP.
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	loader   *repair.Loader
	observer observability.Provider
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes bounds the request body of /v1/load.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New builds a server listening on addr. observer may be nil.
func New(addr string, loader *repair.Loader, observer observability.Provider, opts ...Option) *Server {
	if observer == nil {
		observer = observability.Nop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware(observer))

	s := &Server{
		engine:   engine,
		loader:   loader,
		observer: observer,
		maxBody:  DefaultMaxBodyBytes,
		server: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.server.Addr }

func (s *Server) setupRoutes() {
	handler := &handler{loader: s.loader, maxBody: s.maxBody}

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/load", handler.Load)
	}

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.observer.Info(ctx, "server listening", observability.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func loggerMiddleware(observer observability.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		observer.Info(c.Request.Context(), "http request",
			observability.String(observability.AttrHTTPMethod, c.Request.Method),
			observability.String(observability.AttrHTTPRoute, c.FullPath()),
			observability.Int(observability.AttrHTTPStatusCode, c.Writer.Status()),
			observability.Duration(observability.AttrDuration, time.Since(start)),
		)
	}
}
