// package models defines the catalog entities of the music service
package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Thumbnails maps a size key ("100x100", "320x320") to an image URL.
type Thumbnails map[string]string

// Largest returns the URL with the widest size key, or "".
func (t Thumbnails) Largest() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return thumbWidth(keys[i]) > thumbWidth(keys[j]) })
	if len(keys) == 0 {
		return ""
	}
	return t[keys[0]]
}

func thumbWidth(key string) int {
	w, _, _ := strings.Cut(key, "x")
	n := 0
	for _, r := range w {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

type ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Genre is a catalog genre.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist is a performer.
type Artist struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Country       string     `json:"country,omitempty"`
	Genres        []Genre    `json:"genres,omitempty"`
	Thumbnails    Thumbnails `json:"thumbnails,omitempty"`
	MusicBrainzID string     `json:"musicbrainzid,omitempty"`
	Origin        *Location  `json:"origin,omitempty"`
	AverageBPM    int        `json:"bpm,omitempty"`
}

// Price is a product price in the territory's currency.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// Product is an album, single or track.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"-"`
	Performers  []Artist   `json:"performers,omitempty"`
	Genres      []Genre    `json:"genres,omitempty"`
	Thumbnails  Thumbnails `json:"thumbnails,omitempty"`
	Price       *Price     `json:"price,omitempty"`
	ReleaseDate *time.Time `json:"releasedate,omitempty"`
	Duration    int        `json:"duration,omitempty"` // seconds
	TrackCount  int        `json:"trackcount,omitempty"`
	Label       string     `json:"label,omitempty"`
	BPM         int        `json:"bpm,omitempty"`
}

// PerformerNames joins the performer names with ", ".
func (p Product) PerformerNames() string {
	names := make([]string, 0, len(p.Performers))
	for _, a := range p.Performers {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// MixGroup is a curated collection of mixes.
type MixGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ItemCount  int        `json:"itemcount,omitempty"`
	Thumbnails Thumbnails `json:"thumbnails,omitempty"`
}

// Mix is a curated radio station.
type Mix struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	ParentalAdvisory bool       `json:"parentaladvisory,omitempty"`
	Thumbnails       Thumbnails `json:"thumbnails,omitempty"`
}

// SearchResult is one hit of a mixed search: exactly one of Artist and Product is set.
type SearchResult struct {
	Category Category `json:"-"`
	Artist   *Artist  `json:"artist,omitempty"`
	Product  *Product `json:"product,omitempty"`
}

// ID returns the id of the underlying entity.
func (r SearchResult) ID() string {
	if r.Artist != nil {
		return r.Artist.ID
	}
	if r.Product != nil {
		return r.Product.ID
	}
	return ""
}

// Name returns the name of the underlying entity.
func (r SearchResult) Name() string {
	if r.Artist != nil {
		return r.Artist.Name
	}
	if r.Product != nil {
		return r.Product.Name
	}
	return ""
}

// PlayEvent is one play of a product by the signed in user.
type PlayEvent struct {
	Action   string    `json:"action"`
	PlayedAt time.Time `json:"datetime"`
	Product  Product   `json:"product"`
}

// ArtistFromJSON decodes an artist node.
func ArtistFromJSON(raw json.RawMessage) (Artist, bool) {
	var node struct {
		Artist
		Genres []ref `json:"genres"`
	}
	if err := json.Unmarshal(raw, &node); err != nil || node.ID == "" {
		return Artist{}, false
	}
	a := node.Artist
	a.Genres = genres(node.Genres)
	return a, true
}

// ProductFromJSON decodes a product node.
func ProductFromJSON(raw json.RawMessage) (Product, bool) {
	var node struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Category   ref        `json:"category"`
		Genres     []ref      `json:"genres"`
		Thumbnails Thumbnails `json:"thumbnails"`
		Price      *Price     `json:"price"`
		Release    string     `json:"streetreleasedate"`
		Duration   int        `json:"duration"`
		TrackCount int        `json:"trackcount"`
		Label      string     `json:"label"`
		BPM        int        `json:"bpm"`
		Creators   struct {
			Performers []json.RawMessage `json:"performers"`
		} `json:"creators"`
	}
	if err := json.Unmarshal(raw, &node); err != nil || node.ID == "" {
		return Product{}, false
	}

	p := Product{
		ID:         node.ID,
		Name:       node.Name,
		Category:   categoryFromRef(node.Category),
		Genres:     genres(node.Genres),
		Thumbnails: node.Thumbnails,
		Price:      node.Price,
		Duration:   node.Duration,
		TrackCount: node.TrackCount,
		Label:      node.Label,
		BPM:        node.BPM,
	}
	for _, performer := range node.Creators.Performers {
		if a, ok := ArtistFromJSON(performer); ok {
			p.Performers = append(p.Performers, a)
		}
	}
	if t, ok := parseTime(node.Release); ok {
		p.ReleaseDate = &t
	}
	return p, true
}

// GenreFromJSON decodes a genre node.
func GenreFromJSON(raw json.RawMessage) (Genre, bool) {
	var g Genre
	if err := json.Unmarshal(raw, &g); err != nil || g.ID == "" {
		return Genre{}, false
	}
	if g.Name == "" {
		g.Name = g.ID
	}
	return g, true
}

// MixGroupFromJSON decodes a mix group node.
func MixGroupFromJSON(raw json.RawMessage) (MixGroup, bool) {
	var g MixGroup
	if err := json.Unmarshal(raw, &g); err != nil || g.ID == "" {
		return MixGroup{}, false
	}
	return g, true
}

// MixFromJSON decodes a mix node.
func MixFromJSON(raw json.RawMessage) (Mix, bool) {
	var m Mix
	if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" {
		return Mix{}, false
	}
	return m, true
}

// SearchResultFromJSON decodes a mixed search hit by its category.
func SearchResultFromJSON(raw json.RawMessage) (SearchResult, bool) {
	var head struct {
		Category ref `json:"category"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return SearchResult{}, false
	}

	switch c := categoryFromRef(head.Category); {
	case c == CategoryArtist:
		a, ok := ArtistFromJSON(raw)
		if !ok {
			return SearchResult{}, false
		}
		return SearchResult{Category: c, Artist: &a}, true
	case c.IsProduct():
		p, ok := ProductFromJSON(raw)
		if !ok {
			return SearchResult{}, false
		}
		return SearchResult{Category: c, Product: &p}, true
	default:
		return SearchResult{}, false
	}
}

// PlayEventFromJSON decodes a play history entry.
func PlayEventFromJSON(raw json.RawMessage) (PlayEvent, bool) {
	var node struct {
		Action   string          `json:"action"`
		DateTime string          `json:"datetime"`
		Product  json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(raw, &node); err != nil || len(node.Product) == 0 {
		return PlayEvent{}, false
	}
	p, ok := ProductFromJSON(node.Product)
	if !ok {
		return PlayEvent{}, false
	}
	e := PlayEvent{Action: node.Action, Product: p}
	if t, ok := parseTime(node.DateTime); ok {
		e.PlayedAt = t
	}
	return e, true
}

// SuggestionFromJSON decodes a suggestion, which is either a bare string or an object with a name.
func SuggestionFromJSON(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var r ref
	if err := json.Unmarshal(raw, &r); err != nil || r.Name == "" {
		return "", false
	}
	return r.Name, true
}

func categoryFromRef(r ref) Category {
	c, err := ParseCategory(r.ID)
	if err != nil {
		return CategoryUnknown
	}
	return c
}

func genres(refs []ref) []Genre {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Genre, 0, len(refs))
	for _, r := range refs {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		out = append(out, Genre{ID: r.ID, Name: name})
	}
	return out
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
