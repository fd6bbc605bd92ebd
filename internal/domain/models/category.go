package models

import "strings"

// MotoCategory is one of the three Mottu models.
type MotoCategory string

const (
	CategorySport MotoCategory = "Mottu Sport"
	CategoryE     MotoCategory = "Mottu E"
	CategoryPop   MotoCategory = "Mottu Pop"

	// CategoryAll is the filter value that matches every category.
	CategoryAll = "All"
)

var categoryImages = map[MotoCategory]string{
	CategorySport: "mottu-sport.png",
	CategoryE:     "mottu-e.png",
	CategoryPop:   "mottu-pop.png",
}

// CanonicalCategory maps free-form category text to a known category. Unknown input is a Pop.
func CanonicalCategory(raw string) MotoCategory {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "sport"):
		return CategorySport
	case s == "e" || strings.HasSuffix(s, " e") || strings.Contains(s, "el"):
		return CategoryE
	default:
		return CategoryPop
	}
}

// CategoryImage returns the image asset shown for a category.
func CategoryImage(cat MotoCategory) string {
	if img, ok := categoryImages[cat]; ok {
		return img
	}
	return categoryImages[CategoryPop]
}

// CatalogEntry describes one of the models offered in the catalog.
type CatalogEntry struct {
	ID       string       `json:"id"`
	Category MotoCategory `json:"title"`
	// DescriptionKey is the i18n key for the short model description.
	DescriptionKey string `json:"descriptionKey"`
	Image          string `json:"image"`
}

// Catalog lists the models in display order.
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{ID: "1", Category: CategoryPop, DescriptionKey: "home.models.pop", Image: CategoryImage(CategoryPop)},
		{ID: "2", Category: CategoryE, DescriptionKey: "home.models.e", Image: CategoryImage(CategoryE)},
		{ID: "3", Category: CategorySport, DescriptionKey: "home.models.sport", Image: CategoryImage(CategorySport)},
	}
}
