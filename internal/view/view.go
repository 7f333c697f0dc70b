// Package view renders HTML pages from a template directory.
//
// Layout of the directory:
//
//	layouts/*.html   shared skeletons ("base")
//	partials/*.html  fragments shared by pages ("flash", "entity_table", ...)
//	pages/*.html     one file per page, addressed by file name
//
// Each page is parsed together with every layout and partial into its own
// template set, so pages can redefine the same block names.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Data is the render context handed to a page.
type Data map[string]any

// Error is returned when a page is missing or fails to execute.
type Error struct {
	Template string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("template error in %s: %v", e.Template, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Renderer holds the parsed page sets. It is read-only after New and safe
// for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"dict":  dict,
}

// dict builds a map from alternating keys and values, so a partial can be
// handed more than one value.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// New parses every page found under pages/ in fsys.
func New(fsys fs.FS) (*Renderer, error) {
	pageFiles, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("view.New: glob pages: %w", err)
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("view.New: no pages found")
	}

	var shared []string
	for _, pattern := range []string{"layouts/*.html", "partials/*.html"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("view.New: glob %s: %w", pattern, err)
		}
		shared = append(shared, matches...)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, page := range pageFiles {
		name := path.Base(page)
		files := append([]string{page}, shared...)
		ts, err := template.New(name).Funcs(funcs).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("view.New: parse %s: %w", name, err)
		}
		r.pages[name] = ts
	}
	return r, nil
}

// Render executes page name with data into w. Output is buffered, so on
// error nothing has been written to w.
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	ts, ok := r.pages[name]
	if !ok {
		return &Error{Template: name, Err: fmt.Errorf("template not found")}
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, name, data); err != nil {
		return &Error{Template: name, Err: err}
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether page name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
