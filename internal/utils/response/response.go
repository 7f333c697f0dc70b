// Package response provides helpers for writing consistent HTML responses.
//
// Every handler in this application answers with a rendered page or a
// redirect. Rather than repeating the same steps (render, set header, set
// status, write) in every handler, we centralise them here, along with the
// error pages.
package response

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/catalog/internal/view"
)

// Page names of the error pages.
const (
	NotFoundPage = "404.html"
	ErrorPage    = "error.html"
)

// Renderer is the part of *view.Renderer handlers need.
type Renderer interface {
	Render(w io.Writer, name string, data view.Data) error
}

// HTML renders page name and writes it with the given status.
//
// IMPORTANT ORDER: the page is rendered into a buffer first, so a template
// failure is reported before any header or status has been sent.
func HTML(w http.ResponseWriter, views Renderer, status int, name string, data view.Data) error {
	var buf bytes.Buffer
	if err := views.Render(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// NotFound answers 404 with the not-found page naming the requested path.
func NotFound(w http.ResponseWriter, r *http.Request, views Renderer, log *slog.Logger) {
	data := view.Data{"title": "Page introuvable", "uri": r.URL.Path}
	if err := HTML(w, views, http.StatusNotFound, NotFoundPage, data); err != nil {
		log.Error("rendering not found page", slog.String("error", err.Error()))
		http.Error(w, "404 page not found", http.StatusNotFound)
	}
}

// ServerError logs err and answers 500. A template failure names the
// template in the page; anything else gets a generic message so store
// internals are not leaked to the browser.
func ServerError(w http.ResponseWriter, r *http.Request, views Renderer, log *slog.Logger, err error) {
	log.Error("request failed",
		slog.String("method", r.Method),
		slog.String("url", r.URL.String()),
		slog.String("error", err.Error()))

	msg := "the server encountered a problem and could not process your request"
	var verr *view.Error
	if errors.As(err, &verr) {
		msg = "Template error in " + verr.Template
	}

	data := view.Data{"title": "Erreur", "message": msg}
	if rerr := HTML(w, views, http.StatusInternalServerError, ErrorPage, data); rerr != nil {
		log.Error("rendering error page", slog.String("error", rerr.Error()))
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// ValidationError converts validator field errors into one human-readable
// sentence, suitable for an error flash.
//
// Example output:
//
//	field Name is required
func ValidationError(errs validator.ValidationErrors) string {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return strings.Join(errMessages, ", ")
}
