package models

import (
	"strings"
	"time"
)

// Moto is a vehicle record of the fleet inventory.
type Moto struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SubTitle  string    `json:"subTitle"` // canonical category
	Plate     string    `json:"plate"`
	StockID   *string   `json:"stockId"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// MotoInput is the payload used to create a moto.
type MotoInput struct {
	Title    string  `json:"title" validate:"required"`
	SubTitle string  `json:"subTitle" validate:"required"`
	Plate    string  `json:"plate" validate:"required,min=6"`
	StockID  *string `json:"stockId,omitempty"`
}

// Normalize trims free-text fields and canonicalizes the category.
func (in MotoInput) Normalize() MotoInput {
	out := MotoInput{
		Title: strings.TrimSpace(in.Title),
		Plate: strings.TrimSpace(in.Plate),
	}
	if strings.TrimSpace(in.SubTitle) != "" {
		out.SubTitle = string(CanonicalCategory(in.SubTitle))
	}
	out.StockID = normalizeRef(in.StockID)
	return out
}

// MotoChanges carries a partial moto update; nil fields are left untouched.
type MotoChanges struct {
	Title    *string `json:"title,omitempty"`
	SubTitle *string `json:"subTitle,omitempty"`
	Plate    *string `json:"plate,omitempty"`
	StockID  *string `json:"stockId,omitempty"`
	// ClearStock detaches the moto from its stock.
	ClearStock bool `json:"clearStock,omitempty"`
}

// Empty reports whether the update changes nothing.
func (c MotoChanges) Empty() bool {
	return c.Title == nil && c.SubTitle == nil && c.Plate == nil && c.StockID == nil && !c.ClearStock
}

// ValidationView fills the missing fields with placeholders that always pass, so only the
// provided fields are checked.
func (c MotoChanges) ValidationView() MotoInput {
	in := MotoInput{Title: "OK", SubTitle: string(CategoryPop), Plate: "BRA0A00"}
	if c.Title != nil {
		in.Title = *c.Title
	}
	if c.SubTitle != nil {
		in.SubTitle = *c.SubTitle
	}
	if c.Plate != nil {
		in.Plate = *c.Plate
	}
	return in.Normalize()
}

// Apply merges the changes into m.
func (c MotoChanges) Apply(m Moto) Moto {
	if c.Title != nil {
		m.Title = strings.TrimSpace(*c.Title)
	}
	if c.SubTitle != nil {
		m.SubTitle = string(CanonicalCategory(*c.SubTitle))
	}
	if c.Plate != nil {
		m.Plate = strings.TrimSpace(*c.Plate)
	}
	if c.StockID != nil {
		m.StockID = normalizeRef(c.StockID)
	}
	if c.ClearStock {
		m.StockID = nil
	}
	return m
}

// Hydrate canonicalizes the category and derives the display image.
func (m Moto) Hydrate() Moto {
	cat := CanonicalCategory(m.SubTitle)
	m.SubTitle = string(cat)
	m.Image = CategoryImage(cat)
	return m
}

func normalizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}
