package entity

import (
	"log/slog"

	"github.com/aanand-mishra/catalog/internal/flash"
	"github.com/aanand-mishra/catalog/internal/storage"
	"github.com/aanand-mishra/catalog/internal/types"
	"github.com/aanand-mishra/catalog/internal/utils/response"
)

// Deps are the collaborators shared by every entity resource.
type Deps struct {
	Views    response.Renderer
	Notifier flash.Notifier
	Log      *slog.Logger
}

// Persons builds the /persons resource. The add form historically posts
// full_name, the edit form name; both are accepted.
func Persons(d Deps, store storage.Gateway[types.Person]) *Resource[types.Person] {
	return &Resource[types.Person]{
		Store:      store,
		Views:      d.Views,
		Notifier:   d.Notifier,
		Log:        d.Log,
		Path:       "/persons",
		Key:        "persons",
		Noun:       "Person",
		FormFields: []string{"name", "full_name"},
		Pages: Pages{
			List:       "persons.html",
			Print:      "list_persons.html",
			ListTitle:  "Gestion des Musiciens",
			PrintTitle: "Liste des Personnes",
			FoundTitle: "Personne(s) trouvée(s)",
		},
	}
}

// Genres builds the /genres resource.
func Genres(d Deps, store storage.Gateway[types.Genre]) *Resource[types.Genre] {
	return &Resource[types.Genre]{
		Store:      store,
		Views:      d.Views,
		Notifier:   d.Notifier,
		Log:        d.Log,
		Path:       "/genres",
		Key:        "genres",
		Noun:       "Genre",
		FormFields: []string{"name"},
		Pages: Pages{
			List:       "genres.html",
			Print:      "list_genres.html",
			ListTitle:  "Gestion des Genres",
			PrintTitle: "Liste des Genres",
			FoundTitle: "Genre(s) trouvé(s)",
		},
	}
}
