// Package pages serves the pages that are not backed by the database: the
// start page, the about page and the not-found fallback.
package pages

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/catalog/internal/utils/response"
	"github.com/aanand-mishra/catalog/internal/view"
)

// Start handles GET /.
func Start(views response.Renderer, log *slog.Logger) http.HandlerFunc {
	return static(views, log, "start.html", "Start")
}

// About handles GET /about.
func About(views response.Renderer, log *slog.Logger) http.HandlerFunc {
	return static(views, log, "about.html", "A propos de ...")
}

// NotFound answers every request no other route matched.
func NotFound(views response.Renderer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, views, log)
	}
}

func static(views response.Renderer, log *slog.Logger, page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := response.HTML(w, views, http.StatusOK, page, view.Data{"title": title})
		if err != nil {
			response.ServerError(w, r, views, log, err)
		}
	}
}
