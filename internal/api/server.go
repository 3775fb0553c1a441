// Package api exposes the engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/msarisk/internal/engine"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
}

// Server routes requests to an Engine.
type Server struct {
	echo   *echo.Echo
	engine *engine.Engine
	log    zerolog.Logger
	now    func() time.Time
}

// New builds the echo instance with middleware and routes.
func New(eng *engine.Engine, opts Options, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(RequestID())
	e.Use(Logger(log))
	e.Use(Recovery(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, RequestIDHeader},
	}))

	s := &Server{echo: e, engine: eng, log: log, now: time.Now}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.root)
	g := s.echo.Group("/api")
	g.GET("/msas", s.listRegions)
	g.POST("/analyze", s.analyze)
	g.POST("/compare", s.compare)
	g.GET("/health", s.health)
	g.GET("/stats", s.stats)
	g.GET("/disparities", s.disparities)
	g.GET("/recommendations", s.recommendations)
	g.POST("/reload", s.reload)
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting server")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}
