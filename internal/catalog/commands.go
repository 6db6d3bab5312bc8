package catalog

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/models"
)

const (
	itemsField  = "items"
	mixesField  = "mixes"
	musicDomain = "music"
)

// SearchParams filters a mixed search. At least one of Term, GenreID or Location is required.
type SearchParams struct {
	Term         string
	Category     models.Category
	GenreID      string
	OrderBy      models.OrderBy
	SortOrder    models.SortOrder
	Location     *models.Location
	MaxDistance  int
	MinBPM       int
	MaxBPM       int
	StartIndex   int
	ItemsPerPage int
}

// ArtistProductsParams filters an artist's products.
type ArtistProductsParams struct {
	ArtistID     string
	Category     models.Category
	OrderBy      models.OrderBy
	SortOrder    models.SortOrder
	StartIndex   int
	ItemsPerPage int
}

func territory() api.Descriptor {
	return api.Descriptor{RequiresCountryCode: true}
}

func segment(b *strings.Builder, parts ...string) {
	for _, p := range parts {
		b.WriteString(url.PathEscape(p))
		b.WriteString("/")
	}
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return api.ArgumentError("%s is required", name)
	}
	return nil
}

// chartCategory validates the categories chart and release endpoints accept.
func chartCategory(c models.Category) error {
	if c != models.CategoryAlbum && c != models.CategoryTrack {
		return api.ArgumentError("category %s is not supported, use album or track", c)
	}
	return nil
}

func formatLocation(loc models.Location) string {
	return strconv.FormatFloat(loc.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Longitude, 'f', -1, 64)
}

func availabilityCommand() *api.ItemCommand[struct{}] {
	return &api.ItemCommand[struct{}]{
		Desc:    territory(),
		Convert: func(json.RawMessage) (struct{}, bool) { return struct{}{}, true },
	}
}

func searchCommand(p SearchParams) *api.ListCommand[models.SearchResult] {
	return &api.ListCommand[models.SearchResult]{
		Desc: territory(),
		Path: api.StaticPath("search/"),
		Params: func(q *api.Query) error {
			if strings.TrimSpace(p.Term) == "" && p.GenreID == "" && p.Location == nil {
				return api.ArgumentError("a search term, genre or location is required")
			}
			q.AddIfSet("q", p.Term)
			if p.Category != models.CategoryUnknown {
				q.Add("category", p.Category.String())
			}
			q.AddIfSet("genre", p.GenreID)
			q.AddIfSet("orderby", p.OrderBy.String())
			q.AddIfSet("sortorder", p.SortOrder.String())
			if p.Location != nil {
				q.Add("location", formatLocation(*p.Location))
				if p.MaxDistance > 0 {
					q.AddInt("maxdistance", p.MaxDistance)
				}
			}
			if p.MinBPM > 0 {
				q.AddInt("minbpm", p.MinBPM)
			}
			if p.MaxBPM > 0 {
				q.AddInt("maxbpm", p.MaxBPM)
			}
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.SearchResultFromJSON,
		StartIndex:   p.StartIndex,
		ItemsPerPage: p.ItemsPerPage,
	}
}

func searchArtistsCommand(term string, startIndex, itemsPerPage int) *api.ListCommand[models.Artist] {
	return &api.ListCommand[models.Artist]{
		Desc: territory(),
		Path: api.StaticPath("search/"),
		Params: func(q *api.Query) error {
			if strings.TrimSpace(term) == "" {
				return api.ArgumentError("a search term is required")
			}
			q.Add("q", term)
			q.Add("category", models.CategoryArtist.String())
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.ArtistFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func suggestionsCommand(term string, maxItems int) *api.ListCommand[string] {
	if maxItems <= 0 {
		maxItems = api.SuggestionItemsPerPage
	}
	return &api.ListCommand[string]{
		Desc: territory(),
		Path: api.StaticPath("suggestions/"),
		Params: func(q *api.Query) error {
			if strings.TrimSpace(term) == "" {
				return api.ArgumentError("a search term is required")
			}
			q.Add("q", term)
			q.AddInt("maxitems", maxItems)
			return nil
		},
		ItemsField: itemsField,
		Convert:    models.SuggestionFromJSON,
		Unpaged:    true,
	}
}

func artistProductsCommand(p ArtistProductsParams) *api.ListCommand[models.Product] {
	return &api.ListCommand[models.Product]{
		Desc: territory(),
		Path: func(b *strings.Builder) error {
			if err := requireID("artist id", p.ArtistID); err != nil {
				return err
			}
			b.WriteString("creators/")
			segment(b, p.ArtistID)
			b.WriteString("products/")
			return nil
		},
		Params: func(q *api.Query) error {
			if p.Category != models.CategoryUnknown {
				if !p.Category.IsProduct() {
					return api.ArgumentError("category %s is not a product category", p.Category)
				}
				q.Add("category", p.Category.String())
			}
			q.AddIfSet("orderby", p.OrderBy.String())
			q.AddIfSet("sortorder", p.SortOrder.String())
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.ProductFromJSON,
		StartIndex:   p.StartIndex,
		ItemsPerPage: p.ItemsPerPage,
	}
}

func similarArtistsCommand(artistID string, startIndex, itemsPerPage int) *api.ListCommand[models.Artist] {
	return &api.ListCommand[models.Artist]{
		Desc: territory(),
		Path: func(b *strings.Builder) error {
			if err := requireID("artist id", artistID); err != nil {
				return err
			}
			b.WriteString("creators/")
			segment(b, artistID)
			b.WriteString("similar/")
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.ArtistFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func artistsAroundCommand(loc models.Location, maxDistance, startIndex, itemsPerPage int) *api.ListCommand[models.Artist] {
	return &api.ListCommand[models.Artist]{
		Desc: territory(),
		Path: api.StaticPath("creators/"),
		Params: func(q *api.Query) error {
			if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
				return api.ArgumentError("location %s is out of range", formatLocation(loc))
			}
			q.Add("location", formatLocation(loc))
			if maxDistance > 0 {
				q.AddInt("maxdistance", maxDistance)
			}
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.ArtistFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func topArtistsCommand(genreID string, startIndex, itemsPerPage int) *api.ListCommand[models.Artist] {
	return &api.ListCommand[models.Artist]{
		Desc: territory(),
		Path: func(b *strings.Builder) error {
			if genreID != "" {
				b.WriteString("genres/")
				segment(b, genreID)
			}
			b.WriteString("creators/charts/")
			return nil
		},
		ItemsField:   itemsField,
		Convert:      models.ArtistFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

// genreScopedProducts produces "products/{kind}/{cat}/" or "genres/{g}/{kind}/{cat}/".
func genreScopedProducts(kind string, category models.Category, genreID string) api.PathFunc {
	return func(b *strings.Builder) error {
		if err := chartCategory(category); err != nil {
			return err
		}
		if genreID != "" {
			b.WriteString("genres/")
			segment(b, genreID)
		} else {
			b.WriteString("products/")
		}
		b.WriteString(kind)
		b.WriteString("/")
		b.WriteString(category.String())
		b.WriteString("/")
		return nil
	}
}

func topProductsCommand(category models.Category, genreID string, startIndex, itemsPerPage int) *api.ListCommand[models.Product] {
	return &api.ListCommand[models.Product]{
		Desc:         territory(),
		Path:         genreScopedProducts("charts", category, genreID),
		ItemsField:   itemsField,
		Convert:      models.ProductFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func newReleasesCommand(category models.Category, genreID string, startIndex, itemsPerPage int) *api.ListCommand[models.Product] {
	return &api.ListCommand[models.Product]{
		Desc:         territory(),
		Path:         genreScopedProducts("new", category, genreID),
		ItemsField:   itemsField,
		Convert:      models.ProductFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func productCommand(id string) *api.ItemCommand[models.Product] {
	return &api.ItemCommand[models.Product]{
		Desc: territory(),
		Path: func(b *strings.Builder) error {
			if err := requireID("product id", id); err != nil {
				return err
			}
			b.WriteString("products/")
			segment(b, id)
			return nil
		},
		Convert: models.ProductFromJSON,
	}
}

func genresCommand() *api.ListCommand[models.Genre] {
	return &api.ListCommand[models.Genre]{
		Desc:       territory(),
		Path:       api.StaticPath("genres/"),
		ItemsField: itemsField,
		Convert:    models.GenreFromJSON,
		Unpaged:    true,
	}
}

func exclusivity(tag string) api.QueryFunc {
	return func(q *api.Query) error {
		q.AddIfSet("exclusivity", tag)
		return nil
	}
}

func mixGroupsCommand(exclusiveTag string, startIndex, itemsPerPage int) *api.ListCommand[models.MixGroup] {
	desc := territory()
	desc.Domain = musicDomain
	return &api.ListCommand[models.MixGroup]{
		Desc:         desc,
		Path:         api.StaticPath("mixes/groups/"),
		Params:       exclusivity(exclusiveTag),
		ItemsField:   itemsField,
		Convert:      models.MixGroupFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func mixesCommand(groupID, exclusiveTag string, startIndex, itemsPerPage int) *api.ListCommand[models.Mix] {
	desc := territory()
	desc.Domain = musicDomain
	return &api.ListCommand[models.Mix]{
		Desc: desc,
		Path: func(b *strings.Builder) error {
			if err := requireID("mix group id", groupID); err != nil {
				return err
			}
			b.WriteString("mixes/groups/")
			segment(b, groupID)
			return nil
		},
		Params:       exclusivity(exclusiveTag),
		ItemsField:   mixesField,
		Convert:      models.MixFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func mixCommand(mixID string) *api.ItemCommand[models.Mix] {
	desc := territory()
	desc.Domain = musicDomain
	return &api.ItemCommand[models.Mix]{
		Desc: desc,
		Path: func(b *strings.Builder) error {
			if err := requireID("mix id", mixID); err != nil {
				return err
			}
			b.WriteString("mixes/")
			segment(b, mixID)
			return nil
		},
		Convert: models.MixFromJSON,
	}
}

// userPath runs after authorization, so userID reflects the token just obtained.
func userPath(userID func() string, rest string) api.PathFunc {
	return func(b *strings.Builder) error {
		id := userID()
		if id == "" {
			return api.NewError(api.ErrUserAuthRequired, 0, nil)
		}
		b.WriteString("users/")
		segment(b, id)
		b.WriteString(rest)
		return nil
	}
}

func playHistoryCommand(userID func() string, startIndex, itemsPerPage int) *api.ListCommand[models.PlayEvent] {
	return &api.ListCommand[models.PlayEvent]{
		Desc:         api.Descriptor{Secured: true, RequiresCountryCode: true, UseBlankTerritory: true},
		Path:         userPath(userID, "playhistory/"),
		ItemsField:   itemsField,
		Convert:      models.PlayEventFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}

func userTopArtistsCommand(userID func() string, startIndex, itemsPerPage int) *api.ListCommand[models.Artist] {
	return &api.ListCommand[models.Artist]{
		Desc:         api.Descriptor{Secured: true, RequiresCountryCode: true, UseBlankTerritory: true},
		Path:         userPath(userID, "charts/creators/"),
		ItemsField:   itemsField,
		Convert:      models.ArtistFromJSON,
		StartIndex:   startIndex,
		ItemsPerPage: itemsPerPage,
	}
}
