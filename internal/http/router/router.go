// Package router assembles the HTTP handler tree: entity routes, static
// pages, static assets, metrics and the middleware chain around them.
package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/catalog/internal/flash"
	"github.com/aanand-mishra/catalog/internal/http/handlers/entity"
	"github.com/aanand-mishra/catalog/internal/http/handlers/pages"
	"github.com/aanand-mishra/catalog/internal/http/middleware"
	"github.com/aanand-mishra/catalog/internal/storage"
	"github.com/aanand-mishra/catalog/internal/types"
	"github.com/aanand-mishra/catalog/internal/utils/response"
)

// Deps are everything the handlers need. Nothing is reached through
// package-level state.
type Deps struct {
	Persons  storage.Gateway[types.Person]
	Genres   storage.Gateway[types.Genre]
	Views    response.Renderer
	Notifier flash.Notifier
	Log      *slog.Logger

	// StaticDir is served under /static/. Empty disables it.
	StaticDir string

	// Registry receives the HTTP metrics and is exposed on /metrics.
	// Nil disables both.
	Registry *prometheus.Registry
}

// New returns the application handler.
//
// Route table:
//
//	GET  /                  start page
//	GET  /about             about page
//	     /persons/...       see entity.Resource.Register
//	     /genres/...        see entity.Resource.Register
//	GET  /static/...        files from StaticDir
//	GET  /metrics           prometheus exposition
//	     anything else      404 page
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", pages.Start(d.Views, d.Log))
	mux.HandleFunc("GET /about", pages.About(d.Views, d.Log))

	ed := entity.Deps{Views: d.Views, Notifier: d.Notifier, Log: d.Log}
	entity.Persons(ed, d.Persons).Register(mux)
	entity.Genres(ed, d.Genres).Register(mux)

	if d.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))
	}

	mws := []middleware.Middleware{
		middleware.Recover(d.Log),
		middleware.RequestID(),
		middleware.Logger(d.Log),
	}
	if d.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
		mws = append(mws, middleware.NewMetrics(d.Registry).Middleware())
	}

	mux.HandleFunc("/", pages.NotFound(d.Views, d.Log))

	return middleware.Chain(mux, mws...)
}
