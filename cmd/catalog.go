package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/catalog"
	"github.com/desertthunder/mixradio/internal/models"
	"github.com/desertthunder/mixradio/internal/shared"
	"github.com/urfave/cli/v3"
)

func parseCategory(cmd *cli.Command) (models.Category, error) {
	value := cmd.String("category")
	if value == "" {
		return models.CategoryUnknown, nil
	}
	c, err := models.ParseCategory(value)
	if err != nil {
		return models.CategoryUnknown, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return c, nil
}

func parseOrdering(cmd *cli.Command) (models.OrderBy, models.SortOrder, error) {
	order, err := models.ParseOrderBy(cmd.String("order"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	sort, err := models.ParseSortOrder(cmd.String("sort"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return order, sort, nil
}

// genreID resolves a --genre value given as an id or a (fuzzy) name.
func genreID(ctx context.Context, client *catalog.Client, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	genre, err := client.ResolveGenre(ctx, value)
	if err != nil {
		return "", err
	}
	return genre.ID, nil
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	value := strings.TrimSpace(cmd.StringArg(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return value, nil
}

func (r *Runner) writeProducts(products []models.Product, start int) {
	for i, p := range products {
		r.writePlain("%d. %s\n", start+i+1, p.Name)
		if names := p.PerformerNames(); names != "" {
			r.writePlain("   Artists: %s\n", names)
		}
		r.writePlain("   ID: %s (%s)\n", p.ID, p.Category)
		if p.ReleaseDate != nil {
			r.writePlain("   Released: %s\n", p.ReleaseDate.Format("2006-01-02"))
		}
		if p.Duration > 0 {
			r.writePlain("   Duration: %s\n", shared.FormatDuration(p.Duration))
		}
	}
}

func (r *Runner) writeArtists(artists []models.Artist, start int) {
	for i, a := range artists {
		r.writePlain("%d. %s\n", start+i+1, a.Name)
		r.writePlain("   ID: %s\n", a.ID)
		if a.Country != "" {
			r.writePlain("   Country: %s\n", a.Country)
		}
	}
}

// Search runs a mixed search.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	category, err := parseCategory(cmd)
	if err != nil {
		return err
	}
	order, sort, err := parseOrdering(cmd)
	if err != nil {
		return err
	}
	genre, err := genreID(ctx, client, cmd.String("genre"))
	if err != nil {
		return err
	}

	params := catalog.SearchParams{
		Term:         cmd.StringArg("term"),
		Category:     category,
		GenreID:      genre,
		OrderBy:      order,
		SortOrder:    sort,
		MinBPM:       cmd.Int("min-bpm"),
		MaxBPM:       cmd.Int("max-bpm"),
		StartIndex:   cmd.Int("start"),
		ItemsPerPage: cmd.Int("count"),
	}
	if cmd.IsSet("lat") || cmd.IsSet("lon") {
		params.Location = &models.Location{Latitude: cmd.Float("lat"), Longitude: cmd.Float("lon")}
		params.MaxDistance = cmd.Int("max-distance")
	}

	r.logger.Debug("searching", "term", params.Term, "category", category)

	resp, err := items(client.Search(ctx, params))
	if err != nil {
		return err
	}

	return r.emit(cmd, resp.Items, func() {
		r.writePlain("Found %d results:\n\n", len(resp.Items))
		for i, hit := range resp.Items {
			r.writePlain("%d. %s [%s]\n", params.StartIndex+i+1, hit.Name(), hit.Category)
			if hit.Product != nil && len(hit.Product.Performers) > 0 {
				r.writePlain("   Artists: %s\n", hit.Product.PerformerNames())
			}
			r.writePlain("   ID: %s\n", hit.ID())
		}
		writePaging(r, resp)
	})
}

// Suggest prints typeahead suggestions.
func (r *Runner) Suggest(ctx context.Context, cmd *cli.Command) error {
	term, err := requireArg(cmd, "term")
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	resp, err := items(client.SearchSuggestions(ctx, term, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		for _, s := range resp.Items {
			r.writePlain("%s\n", s)
		}
	})
}

// ArtistProducts lists an artist's products.
func (r *Runner) ArtistProducts(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	category, err := parseCategory(cmd)
	if err != nil {
		return err
	}
	order, sort, err := parseOrdering(cmd)
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	start := cmd.Int("start")
	resp, err := items(client.ArtistProducts(ctx, catalog.ArtistProductsParams{
		ArtistID:     id,
		Category:     category,
		OrderBy:      order,
		SortOrder:    sort,
		StartIndex:   start,
		ItemsPerPage: cmd.Int("count"),
	}))
	if err != nil {
		return err
	}

	return r.emit(cmd, resp.Items, func() {
		r.writeProducts(resp.Items, start)
		writePaging(r, resp)
	})
}

// ArtistSimilar lists artists similar to the given one.
func (r *Runner) ArtistSimilar(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	start := cmd.Int("start")
	resp, err := items(client.SimilarArtists(ctx, id, start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writeArtists(resp.Items, start)
		writePaging(r, resp)
	})
}

// ArtistNear lists artists from around a point.
func (r *Runner) ArtistNear(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	loc := models.Location{Latitude: cmd.Float("lat"), Longitude: cmd.Float("lon")}
	start := cmd.Int("start")
	resp, err := items(client.ArtistsAroundLocation(ctx, loc, cmd.Int("max-distance"), start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writeArtists(resp.Items, start)
		writePaging(r, resp)
	})
}

// ChartsArtists prints the artist chart.
func (r *Runner) ChartsArtists(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	genre, err := genreID(ctx, client, cmd.String("genre"))
	if err != nil {
		return err
	}

	start := cmd.Int("start")
	resp, err := items(client.TopArtists(ctx, genre, start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writePlainHeader("Top artists")
		r.writeArtists(resp.Items, start)
		writePaging(r, resp)
	})
}

// ChartsProducts prints the album or track chart.
func (r *Runner) ChartsProducts(ctx context.Context, cmd *cli.Command) error {
	return r.productChart(ctx, cmd, "Top", func(client *catalog.Client, category models.Category, genre string, start, count int) (productPage, error) {
		return items(client.TopProducts(ctx, category, genre, start, count))
	})
}

// NewReleases prints new albums or tracks.
func (r *Runner) NewReleases(ctx context.Context, cmd *cli.Command) error {
	return r.productChart(ctx, cmd, "New", func(client *catalog.Client, category models.Category, genre string, start, count int) (productPage, error) {
		return items(client.NewReleases(ctx, category, genre, start, count))
	})
}

type productPage = *api.ListResponse[models.Product]

func (r *Runner) productChart(ctx context.Context, cmd *cli.Command, title string, fetch func(*catalog.Client, models.Category, string, int, int) (productPage, error)) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	category, err := parseCategory(cmd)
	if err != nil {
		return err
	}
	genre, err := genreID(ctx, client, cmd.String("genre"))
	if err != nil {
		return err
	}

	start := cmd.Int("start")
	resp, err := fetch(client, category, genre, start, cmd.Int("count"))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writePlainHeader(fmt.Sprintf("%s %ss", title, category))
		r.writeProducts(resp.Items, start)
		writePaging(r, resp)
	})
}

// Genres lists the territory's genres.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	resp, err := items(client.Genres(ctx))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writePlain("Found %d genres:\n\n", len(resp.Items))
		for _, g := range resp.Items {
			r.writePlain("%-20s %s\n", g.ID, g.Name)
		}
	})
}

// MixGroups lists the curated mix groups.
func (r *Runner) MixGroups(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	start := cmd.Int("start")
	resp, err := items(client.MixGroups(ctx, cmd.String("exclusive"), start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		for i, g := range resp.Items {
			r.writePlain("%d. %s\n", start+i+1, g.Name)
			r.writePlain("   ID: %s\n", g.ID)
			if g.ItemCount > 0 {
				r.writePlain("   Mixes: %d\n", g.ItemCount)
			}
		}
		writePaging(r, resp)
	})
}

// MixesList lists the mixes of a group.
func (r *Runner) MixesList(ctx context.Context, cmd *cli.Command) error {
	group, err := requireArg(cmd, "group")
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	start := cmd.Int("start")
	resp, err := items(client.Mixes(ctx, group, cmd.String("exclusive"), start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		for i, m := range resp.Items {
			r.writePlain("%d. %s\n", start+i+1, m.Name)
			r.writePlain("   ID: %s\n", m.ID)
		}
		writePaging(r, resp)
	})
}

// MixShow prints a single mix.
func (r *Runner) MixShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	mix, err := client.Mix(ctx, id)
	if err != nil {
		return err
	}
	return r.emit(cmd, mix, func() {
		r.writePlain("Mix: %s\n", mix.Name)
		r.writePlain("ID: %s\n", mix.ID)
		if mix.Description != "" {
			r.writePlain("Description: %s\n", mix.Description)
		}
		if mix.ParentalAdvisory {
			r.writePlain("Parental advisory\n")
		}
		if url := mix.Thumbnails.Largest(); url != "" {
			r.writePlain("Image: %s\n", url)
		}
	})
}

// Product prints a single product.
func (r *Runner) Product(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	resp, err := client.Product(ctx, id)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}

	p := resp.Result
	return r.emit(cmd, p, func() {
		r.writePlain("%s\n", p.Name)
		if names := p.PerformerNames(); names != "" {
			r.writePlain("Artists: %s\n", names)
		}
		r.writePlain("Category: %s\n", p.Category)
		if p.ReleaseDate != nil {
			r.writePlain("Released: %s\n", p.ReleaseDate.Format("2006-01-02"))
		}
		if p.Duration > 0 {
			r.writePlain("Duration: %s\n", shared.FormatDuration(p.Duration))
		}
		if p.TrackCount > 0 {
			r.writePlain("Tracks: %d\n", p.TrackCount)
		}
		if p.Label != "" {
			r.writePlain("Label: %s\n", p.Label)
		}
		if p.Price != nil {
			r.writePlain("Price: %.2f %s\n", p.Price.Value, p.Price.Currency)
		}
		r.writePlain("ID: %s\n", p.ID)
	})
}

// Available reports whether the service is offered in the configured territory.
func (r *Runner) Available(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}
	available, err := client.CheckAvailability(ctx)
	if err != nil {
		return err
	}

	territory := strings.ToUpper(client.Settings().CountryCode)
	result := map[string]any{"territory": territory, "available": available}
	return r.emit(cmd, result, func() {
		if available {
			r.writePlain("✓ MixRadio is available in %s\n", territory)
		} else {
			r.writePlain("✗ MixRadio is not available in %s\n", territory)
		}
	})
}
