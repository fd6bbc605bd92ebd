package models

import (
	"strings"
	"time"
)

// Stock is a storage yard holding motos.
type Stock struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// StockInput is used for both creation and full replacement of a stock.
type StockInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,min=0"`
	Location string `json:"location,omitempty"`
}

// Normalize trims free-text fields.
func (in StockInput) Normalize() StockInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	return in
}

// Apply replaces the mutable fields of s with the input.
func (in StockInput) Apply(s Stock) Stock {
	n := in.Normalize()
	s.Name = n.Name
	s.Location = n.Location
	if n.Quantity != nil {
		s.Quantity = *n.Quantity
	}
	return s
}

// IntPtr is a convenience for building inputs.
func IntPtr(v int) *int { return &v }

// StringPtr is a convenience for building inputs.
func StringPtr(v string) *string { return &v }
