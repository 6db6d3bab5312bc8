package models

import (
	"fmt"
	"strings"
)

// Category classifies catalog items.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryArtist
	CategoryAlbum
	CategorySingle
	CategoryTrack
	CategoryMix
)

var categoryNames = map[Category]string{
	CategoryUnknown: "unknown",
	CategoryArtist:  "artist",
	CategoryAlbum:   "album",
	CategorySingle:  "single",
	CategoryTrack:   "track",
	CategoryMix:     "mix",
}

// String returns the lower-case query value.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryUnknown]
}

// ParseCategory is case-insensitive and accepts plurals ("albums").
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, candidate := range []string{v, strings.TrimSuffix(v, "s"), strings.TrimSuffix(v, "es")} {
		for c, name := range categoryNames {
			if name == candidate && c != CategoryUnknown {
				return c, nil
			}
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown category %q", s)
}

// IsProduct reports whether the category is a product type.
func (c Category) IsProduct() bool {
	return c == CategoryAlbum || c == CategorySingle || c == CategoryTrack
}

// OrderBy is the result ordering for searches and artist products.
type OrderBy int

const (
	OrderByDefault OrderBy = iota
	OrderByRelevance
	OrderByReleaseDate
	OrderByName
)

func (o OrderBy) String() string {
	switch o {
	case OrderByRelevance:
		return "relevance"
	case OrderByReleaseDate:
		return "releasedate"
	case OrderByName:
		return "name"
	default:
		return ""
	}
}

// ParseOrderBy maps a flag value to an [OrderBy]; "" is the service default.
func ParseOrderBy(s string) (OrderBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OrderByDefault, nil
	case "relevance":
		return OrderByRelevance, nil
	case "releasedate", "release-date", "date":
		return OrderByReleaseDate, nil
	case "name":
		return OrderByName, nil
	}
	return OrderByDefault, fmt.Errorf("unknown order %q", s)
}

// SortOrder is ascending or descending.
type SortOrder int

const (
	SortDefault SortOrder = iota
	SortAscending
	SortDescending
)

func (s SortOrder) String() string {
	switch s {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return ""
	}
}

// ParseSortOrder maps "asc"/"desc" (or the long forms) to a [SortOrder].
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortDefault, nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	}
	return SortDefault, fmt.Errorf("unknown sort order %q", s)
}
