package ui

import (
	"context"
	"net/http"
	"time"

	"slicefinder/app"
	"slicefinder/internal"
	"slicefinder/internal/config"
	"slicefinder/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server exposes slice discovery over a JSON API and mounts the report viewer
type Server struct {
	router  *gin.Engine
	service *app.SliceDiscoveryService
	reports *App
	config  config.ServerConfig
	logger  *internal.Logger
}

// NewServer creates a new API server instance
func NewServer(service *app.SliceDiscoveryService, cfg config.ServerConfig) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		reports: NewApp(service),
		config:  cfg,
		logger:  internal.DefaultLogger.WithComponent("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.LimitBody(s.config.MaxBodyBytes))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/slices/top", s.handleFindTopSlices)
		api.POST("/slices/batch", s.handleFindTopSlicesBatch)
		api.GET("/runs", s.handleListRuns)
		api.GET("/runs/:id", s.handleGetRun)
	}

	// HTML and Markdown reports are served by the chi app
	s.router.Any("/reports/*path", gin.WrapH(s.reports))
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting slicefinder API on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down API server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
