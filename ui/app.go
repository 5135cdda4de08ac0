package ui

import (
	"net/http"

	"slicefinder/app"
	"slicefinder/domain/core"
	"slicefinder/domain/slicing"
	"slicefinder/internal"
	"slicefinder/internal/errors"
	"slicefinder/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App serves rendered run reports
type App struct {
	router  *chi.Mux
	service *app.SliceDiscoveryService
	logger  *internal.Logger
}

// NewApp creates the report viewer
func NewApp(service *app.SliceDiscoveryService) *App {
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		logger:  internal.DefaultLogger.WithComponent("Reports"),
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/reports/{id}", a.handleReportHTML)
	a.router.Get("/reports/{id}/markdown", a.handleReportMarkdown)
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.HTML(run))
}

func (a *App) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(report.Markdown(run))
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*slicing.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err == nil {
		var run *slicing.Run
		run, err = a.service.GetRun(r.Context(), id)
		if err == nil {
			return run, true
		}
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("report %s: %v", chi.URLParam(r, "id"), err)
	}
	http.Error(w, err.Error(), status)
	return nil, false
}
