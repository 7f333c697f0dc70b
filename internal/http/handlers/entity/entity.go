// Package entity contains the HTTP handlers shared by every catalog entity.
//
// Persons and genres are the same shape (an id and a name), so one generic
// Resource serves both. Each handler is built by a factory method that
// closes over the Resource's dependencies:
//
//	mux.HandleFunc("GET /persons", persons.List())
//
// Mutations answer with a flash cookie and a 303 redirect to the list page,
// which reads the flash once and renders it.
package entity

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/catalog/internal/flash"
	"github.com/aanand-mishra/catalog/internal/storage"
	"github.com/aanand-mishra/catalog/internal/types"
	"github.com/aanand-mishra/catalog/internal/utils/response"
	"github.com/aanand-mishra/catalog/internal/view"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Pages names the templates and titles of one entity.
type Pages struct {
	List  string // list page, also used for search results
	Print string

	ListTitle  string
	PrintTitle string
	FoundTitle string
}

// Resource wires the handlers of one entity to their dependencies.
type Resource[T any] struct {
	Store    storage.Gateway[T]
	Views    response.Renderer
	Notifier flash.Notifier
	Log      *slog.Logger

	// Path is the collection path, e.g. "/persons".
	Path string
	// Key is the render context key holding the records, e.g. "persons".
	Key string
	// Noun starts the flash messages, e.g. "Person".
	Noun string
	// FormFields are the form inputs accepted for the name, first
	// non-empty wins.
	FormFields []string

	Pages Pages
}

// Register binds the six entity routes on mux.
//
// Route table (Path = /persons):
//
//	GET  /persons             list, with flash
//	GET  /persons/print       printable list, no flash
//	POST /persons/add         create
//	POST /persons/find        substring search
//	POST /persons/delete/{id} delete
//	POST /persons/{id}        update
func (res *Resource[T]) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+res.Path, res.List())
	mux.HandleFunc("GET "+res.Path+"/print", res.Print())
	mux.HandleFunc("POST "+res.Path+"/add", res.Create())
	mux.HandleFunc("POST "+res.Path+"/find", res.Find())
	mux.HandleFunc("POST "+res.Path+"/delete/{id}", res.Delete())
	mux.HandleFunc("POST "+res.Path+"/{id}", res.Update())
}

// List handles GET {Path}: every record sorted by name, plus the pending
// flash message if there is one.
func (res *Resource[T]) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := view.Data{"title": res.Pages.ListTitle, "needle": ""}

		msg, ok, err := res.Notifier.TakeErr(w, r)
		if err != nil {
			res.Log.Debug("discarding flash cookie", slog.String("error", err.Error()))
		}
		if ok {
			data["flash"] = msg
		}

		records, err := res.Store.ListAll(r.Context())
		if err != nil {
			res.fail(w, r, err)
			return
		}
		data[res.Key] = records

		res.render(w, r, res.Pages.List, data)
	}
}

// Print handles GET {Path}/print. A print view has no mutation to report,
// so the flash cookie is left alone.
func (res *Resource[T]) Print() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := res.Store.ListAll(r.Context())
		if err != nil {
			res.fail(w, r, err)
			return
		}
		res.render(w, r, res.Pages.Print, view.Data{
			"title": res.Pages.PrintTitle,
			res.Key: records,
		})
	}
}

// Find handles POST {Path}/find: the list page restricted to the records
// whose name contains the submitted text.
func (res *Resource[T]) Find() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			res.redirectWithError(w, r, "malformed form")
			return
		}
		form := types.SearchForm{Name: r.PostForm.Get("name")}
		res.Log.Debug("searching", slog.String("entity", res.Key), slog.String("name", form.Name))

		records, err := res.Store.FindBySubstring(r.Context(), form.Name)
		if err != nil {
			res.fail(w, r, err)
			return
		}
		res.render(w, r, res.Pages.List, view.Data{
			"title":  res.Pages.FoundTitle,
			"needle": form.Name,
			res.Key:  records,
		})
	}
}

// Create handles POST {Path}/add.
func (res *Resource[T]) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := res.readNameForm(w, r)
		if !ok {
			return
		}
		res.Log.Info("creating a record", slog.String("entity", res.Key))

		if _, err := res.Store.Create(r.Context(), form.Name); err != nil {
			res.fail(w, r, err)
			return
		}
		res.redirectWithSuccess(w, r, res.Noun+" successfully added")
	}
}

// Update handles POST {Path}/{id}.
func (res *Resource[T]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := res.readID(w, r)
		if !ok {
			return
		}
		form, ok := res.readNameForm(w, r)
		if !ok {
			return
		}
		res.Log.Info("updating a record", slog.String("entity", res.Key), slog.Int64("id", id))

		if _, err := res.Store.Update(r.Context(), id, form.Name); err != nil {
			res.fail(w, r, err)
			return
		}
		res.redirectWithSuccess(w, r, res.Noun+" successfully updated")
	}
}

// Delete handles POST {Path}/delete/{id}.
func (res *Resource[T]) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := res.readID(w, r)
		if !ok {
			return
		}
		res.Log.Info("deleting a record", slog.String("entity", res.Key), slog.Int64("id", id))

		if err := res.Store.Delete(r.Context(), id); err != nil {
			res.fail(w, r, err)
			return
		}
		res.redirectWithSuccess(w, r, res.Noun+" successfully deleted")
	}
}

// readID parses the {id} path segment. A malformed id names no record, so
// it is answered like a missing one.
func (res *Resource[T]) readID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		response.NotFound(w, r, res.Views, res.Log)
		return 0, false
	}
	return id, true
}

// readNameForm parses and validates the single-field name form. On failure
// the browser is sent back to the list with an error flash.
func (res *Resource[T]) readNameForm(w http.ResponseWriter, r *http.Request) (types.NameForm, bool) {
	if err := r.ParseForm(); err != nil {
		res.redirectWithError(w, r, "malformed form")
		return types.NameForm{}, false
	}

	var form types.NameForm
	for _, field := range res.formFields() {
		if v := strings.TrimSpace(r.PostForm.Get(field)); v != "" {
			form.Name = v
			break
		}
	}

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			res.redirectWithError(w, r, response.ValidationError(verrs))
		} else {
			res.fail(w, r, err)
		}
		return types.NameForm{}, false
	}
	return form, true
}

func (res *Resource[T]) formFields() []string {
	if len(res.FormFields) == 0 {
		return []string{"name"}
	}
	return res.FormFields
}

func (res *Resource[T]) redirectWithSuccess(w http.ResponseWriter, r *http.Request, text string) {
	res.redirect(w, r, flash.Success(text))
}

func (res *Resource[T]) redirectWithError(w http.ResponseWriter, r *http.Request, text string) {
	res.redirect(w, r, flash.Error(text))
}

func (res *Resource[T]) redirect(w http.ResponseWriter, r *http.Request, msg flash.Message) {
	if err := res.Notifier.Set(w, msg); err != nil {
		res.fail(w, r, fmt.Errorf("set flash: %w", err))
		return
	}
	http.Redirect(w, r, res.Path, http.StatusSeeOther)
}

func (res *Resource[T]) render(w http.ResponseWriter, r *http.Request, page string, data view.Data) {
	if err := response.HTML(w, res.Views, http.StatusOK, page, data); err != nil {
		res.fail(w, r, err)
	}
}

// fail maps an error onto an error page: a missing record is a 404,
// everything else a 500.
func (res *Resource[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		res.Log.Info("record not found",
			slog.String("entity", res.Key),
			slog.String("error", err.Error()))
		response.NotFound(w, r, res.Views, res.Log)
		return
	}
	response.ServerError(w, r, res.Views, res.Log, err)
}
