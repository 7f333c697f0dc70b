// Package types holds the data structures shared across the application.
// Keeping them in one place prevents import cycles: handlers, storage and
// views can all import types without depending on each other.
package types

// Person is a musician or any other named individual in the catalog.
//
// ID is assigned by the database on insert and never changes afterwards.
// FullName is not unique; two people may share a name.
type Person struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name" validate:"required"`
}

// Genre is a musical genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

// NameForm is the single-field form posted by the add and edit forms.
//
// Struct tags:
//
//  1. form:"..."  documents the HTML input name the value comes from.
//  2. validate:"..." is checked by go-playground/validator. "required"
//     rejects an empty name. Handlers trim surrounding whitespace first.
type NameForm struct {
	Name string `form:"name" validate:"required"`
}

// SearchForm is posted by the search box. An empty needle is allowed and
// matches every record.
type SearchForm struct {
	Name string `form:"name"`
}
