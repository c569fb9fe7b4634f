package models

// Speaker is static reference data; the slug keys routes and room names.
type Speaker struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}
