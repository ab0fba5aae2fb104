package model

import "github.com/google/uuid"

// Dinner is an orderable catalog dinner.
type Dinner struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BasePrice   Money     `json:"basePrice"`
	Active      bool      `json:"active"`
}

// ServingStyle is a presentation style that adds a surcharge to a dinner.
type ServingStyle struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExtraPrice  Money     `json:"extraPrice"`
	Active      bool      `json:"active"`
}

// MenuItem is a component that can appear inside a dinner or be ordered on its own.
type MenuItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UnitPrice Money     `json:"unitPrice"`
}

// CatalogSnapshot is the full catalog as loaded from the store.
type CatalogSnapshot struct {
	Dinners   []Dinner       `json:"dinners"`
	Styles    []ServingStyle `json:"styles"`
	MenuItems []MenuItem     `json:"menuItems"`
}
