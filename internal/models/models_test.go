package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestConverters(t *testing.T) {
	t.Run("ArtistFromJSON", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"123","name":"Muse","country":"GB","genres":[{"id":"Rock"}],"thumbnails":{"100x100":"small","320x320":"large"},"origin":{"lat":50.7,"lng":-3.5}}`)
		a, ok := ArtistFromJSON(raw)
		if !ok {
			t.Fatal("expected artist to decode")
		}
		if a.Name != "Muse" || a.Country != "GB" {
			t.Errorf("unexpected artist %+v", a)
		}
		if len(a.Genres) != 1 || a.Genres[0].Name != "Rock" {
			t.Errorf("expected genre name to default to id, got %+v", a.Genres)
		}
		if a.Thumbnails.Largest() != "large" {
			t.Errorf("expected largest thumbnail, got %s", a.Thumbnails.Largest())
		}
		if a.Origin == nil || a.Origin.Latitude != 50.7 {
			t.Errorf("unexpected origin %+v", a.Origin)
		}
	})

	t.Run("rejects nodes without id", func(t *testing.T) {
		if _, ok := ArtistFromJSON(json.RawMessage(`{"name":"x"}`)); ok {
			t.Error("expected artist without id to be rejected")
		}
		if _, ok := ProductFromJSON(json.RawMessage(`[]`)); ok {
			t.Error("expected non-object to be rejected")
		}
		if _, ok := MixFromJSON(json.RawMessage(`{}`)); ok {
			t.Error("expected mix without id to be rejected")
		}
	})

	t.Run("ProductFromJSON", func(t *testing.T) {
		raw := json.RawMessage(`{
			"id":"p1","name":"Origin of Symmetry","category":{"id":"Album","name":"Album"},
			"creators":{"performers":[{"id":"123","name":"Muse"},{"name":"no id"}]},
			"streetreleasedate":"2001-06-18T00:00:00Z","price":{"value":7.99,"currency":"GBP"},
			"trackcount":11,"duration":3060
		}`)
		p, ok := ProductFromJSON(raw)
		if !ok {
			t.Fatal("expected product to decode")
		}
		if p.Category != CategoryAlbum {
			t.Errorf("expected album, got %s", p.Category)
		}
		if p.PerformerNames() != "Muse" {
			t.Errorf("unexpected performers %q", p.PerformerNames())
		}
		if p.ReleaseDate == nil || !p.ReleaseDate.Equal(time.Date(2001, 6, 18, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected release date %v", p.ReleaseDate)
		}
		if p.Price == nil || p.Price.Currency != "GBP" || p.TrackCount != 11 {
			t.Errorf("unexpected product %+v", p)
		}
	})

	t.Run("SearchResultFromJSON", func(t *testing.T) {
		tests := []struct {
			name     string
			raw      string
			ok       bool
			category Category
		}{
			{"artist", `{"id":"1","name":"A","category":{"id":"Artist"}}`, true, CategoryArtist},
			{"track", `{"id":"2","name":"T","category":{"id":"Track"}}`, true, CategoryTrack},
			{"single", `{"id":"3","name":"S","category":{"id":"Single"}}`, true, CategorySingle},
			{"unknown category", `{"id":"4","category":{"id":"Podcast"}}`, false, CategoryUnknown},
			{"no category", `{"id":"5"}`, false, CategoryUnknown},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r, ok := SearchResultFromJSON(json.RawMessage(tt.raw))
				if ok != tt.ok {
					t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
				}
				if ok && (r.Category != tt.category || r.ID() == "") {
					t.Errorf("unexpected result %+v", r)
				}
			})
		}
	})

	t.Run("PlayEventFromJSON", func(t *testing.T) {
		raw := json.RawMessage(`{"action":"Played","datetime":"2030-01-01T10:00:00Z","product":{"id":"t1","name":"Uprising","category":{"id":"Track"}}}`)
		e, ok := PlayEventFromJSON(raw)
		if !ok {
			t.Fatal("expected play event to decode")
		}
		if e.Product.Name != "Uprising" || e.PlayedAt.Year() != 2030 {
			t.Errorf("unexpected event %+v", e)
		}
	})

	t.Run("SuggestionFromJSON", func(t *testing.T) {
		if s, ok := SuggestionFromJSON(json.RawMessage(`"muse"`)); !ok || s != "muse" {
			t.Errorf("expected bare string, got %q", s)
		}
		if s, ok := SuggestionFromJSON(json.RawMessage(`{"name":"muse"}`)); !ok || s != "muse" {
			t.Errorf("expected named object, got %q", s)
		}
		if _, ok := SuggestionFromJSON(json.RawMessage(`{}`)); ok {
			t.Error("expected empty suggestion to be rejected")
		}
	})
}

func TestEnums(t *testing.T) {
	t.Run("ParseCategory", func(t *testing.T) {
		tests := map[string]Category{
			"Album":  CategoryAlbum,
			"tracks": CategoryTrack,
			"mixes":  CategoryMix,
			"artist": CategoryArtist,
		}
		for in, want := range tests {
			if got, err := ParseCategory(in); err != nil || got != want {
				t.Errorf("ParseCategory(%q) = %v, %v", in, got, err)
			}
		}
		if _, err := ParseCategory("podcast"); err == nil {
			t.Error("expected error for unknown category")
		}
		if _, err := ParseCategory("unknown"); err == nil {
			t.Error("expected unknown to be rejected")
		}
	})

	t.Run("OrderBy and SortOrder", func(t *testing.T) {
		if o, _ := ParseOrderBy("release-date"); o.String() != "releasedate" {
			t.Errorf("unexpected order %s", o)
		}
		if s, _ := ParseSortOrder("descending"); s.String() != "desc" {
			t.Errorf("unexpected sort %s", s)
		}
		if _, err := ParseSortOrder("sideways"); err == nil {
			t.Error("expected error for unknown sort order")
		}
		if OrderByDefault.String() != "" || SortDefault.String() != "" {
			t.Error("expected defaults to be empty")
		}
	})
}
