package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixradio/internal/models"
	"github.com/desertthunder/mixradio/internal/shared"
)

var (
	_ list.Item = sectionItem{}
	_ list.Item = productItem{}
	_ list.Item = artistItem{}
)

// sectionItem is a [MenuView] entry.
type sectionItem struct {
	section Section
}

func (i sectionItem) FilterValue() string { return i.section.Title }
func (i sectionItem) Title() string       { return i.section.Title }
func (i sectionItem) Description() string { return i.section.Description }

// productItem wraps [models.Product] to implement [list.Item].
type productItem struct {
	product models.Product
}

func (i productItem) FilterValue() string { return i.product.Name }
func (i productItem) Title() string       { return i.product.Name }
func (i productItem) Description() string {
	desc := i.product.PerformerNames()
	if desc == "" {
		desc = i.product.Category.String()
	}
	if i.product.ReleaseDate != nil {
		desc = fmt.Sprintf("%s • %s", desc, i.product.ReleaseDate.Format("2006"))
	}
	return desc
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	parts := []string{}
	if i.artist.Country != "" {
		parts = append(parts, i.artist.Country)
	}
	for _, g := range i.artist.Genres {
		parts = append(parts, g.Name)
	}
	if len(parts) == 0 {
		return "artist"
	}
	return strings.Join(parts, " • ")
}

// searchItems flattens mixed search hits into artist and product items.
func searchItems(results []models.SearchResult) []list.Item {
	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		switch {
		case r.Artist != nil:
			items = append(items, artistItem{artist: *r.Artist})
		case r.Product != nil:
			items = append(items, productItem{product: *r.Product})
		}
	}
	return items
}

// field is one label/value row of the detail view.
type field struct {
	label string
	value string
}

func detailFields(item list.Item) (string, []field) {
	switch it := item.(type) {
	case productItem:
		p := it.product
		fields := []field{
			{"Category", p.Category.String()},
			{"Artists", p.PerformerNames()},
		}
		if p.ReleaseDate != nil {
			fields = append(fields, field{"Released", p.ReleaseDate.Format("2006-01-02")})
		}
		if p.Duration > 0 {
			fields = append(fields, field{"Duration", shared.FormatDuration(p.Duration)})
		}
		if p.TrackCount > 0 {
			fields = append(fields, field{"Tracks", fmt.Sprint(p.TrackCount)})
		}
		if len(p.Genres) > 0 {
			fields = append(fields, field{"Genres", genreList(p.Genres)})
		}
		if p.Label != "" {
			fields = append(fields, field{"Label", p.Label})
		}
		if p.Price != nil {
			fields = append(fields, field{"Price", fmt.Sprintf("%.2f %s", p.Price.Value, p.Price.Currency)})
		}
		fields = append(fields, field{"ID", p.ID})
		return p.Name, fields
	case artistItem:
		a := it.artist
		fields := []field{{"ID", a.ID}}
		if a.Country != "" {
			fields = append(fields, field{"Country", a.Country})
		}
		if len(a.Genres) > 0 {
			fields = append(fields, field{"Genres", genreList(a.Genres)})
		}
		if a.Origin != nil {
			fields = append(fields, field{"Origin", fmt.Sprintf("%.4f, %.4f", a.Origin.Latitude, a.Origin.Longitude)})
		}
		if url := a.Thumbnails.Largest(); url != "" {
			fields = append(fields, field{"Image", url})
		}
		return a.Name, fields
	}
	return "", nil
}

func genreList(genres []models.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}
