// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the haircheck HTTP API: login, photo analysis,
// detection history, and publication-source search.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/haircheck/internal/detect"
	"github.com/pdiddy/haircheck/internal/sources"
	"github.com/pdiddy/haircheck/internal/store"
	"github.com/pdiddy/haircheck/pkg/types"
)

// SourceFinder runs the publication-source pipeline for a summary.
type SourceFinder interface {
	Find(ctx context.Context, summary string, key sources.SortKey) (sources.Result, error)
}

// Server wires the store, detection oracle, and source finder behind the
// HTTP API.
type Server struct {
	cfg      types.Config
	store    *store.Store
	detector detect.Detector
	finder   SourceFinder
	logger   *log.Logger
	echo     *echo.Echo
}

// New builds the echo instance with middleware and routes registered.
func New(cfg types.Config, st *store.Store, detector detect.Detector, finder SourceFinder) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		detector: detector,
		finder:   finder,
		logger:   log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metricsMiddleware)

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.HTTPErrorHandler = s.errorHandler

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/login", s.handleLogin)
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/detections/insights", s.handleInsights)
	api.GET("/export", s.handleExport)
	api.GET("/suggestions/class/:class", s.handleSuggestion)
	api.GET("/image/:id", s.handleImage)
	api.POST("/sources", s.handleSources)

	s.echo = e
	return s
}

// errorHandler renders every error as structured JSON and logs it.
// Domain sentinels are translated to HTTP statuses before they get here.
func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := s.cfg.Server.Listen
	if addr == "" {
		addr = ":8000"
	}
	s.logger.Printf("listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
