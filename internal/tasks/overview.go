package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/mixradio/internal/models"
	"golang.org/x/sync/errgroup"
)

// EndpointResult records a section of the overview that failed.
type EndpointResult struct {
	Section string
	Error   error
}

// OverviewResult is a snapshot of what the territory's catalog is showing.
type OverviewResult struct {
	Genres     []models.Genre
	TopArtists []models.Artist
	TopTracks  []models.Product
	NewAlbums  []models.Product
	Errors     []EndpointResult
}

// Overview fetches the four sections concurrently. A section the service rejects is listed in
// Errors and the rest still come back; only argument errors and cancellation fail the call.
func (e *Engine) Overview(ctx context.Context, count int, progress chan<- ProgressUpdate) (*OverviewResult, error) {
	if count <= 0 {
		count = defaultPageSize
	}

	result := &OverviewResult{}
	var (
		mu   sync.Mutex
		done int
	)
	const sections = 4

	record := func(phase Phase, name string, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if err != nil {
			result.Errors = append(result.Errors, EndpointResult{Section: name, Error: err})
		}
		sendProgress(progress, overviewUpdate(phase, done, sections, n))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := e.catalog.Genres(ctx)
		if err != nil {
			return err
		}
		result.Genres = resp.Items
		record(FetchGenres, "genres", len(resp.Items), resp.Error)
		return nil
	})

	g.Go(func() error {
		resp, err := e.catalog.TopArtists(ctx, "", 0, count)
		if err != nil {
			return err
		}
		result.TopArtists = resp.Items
		record(FetchTopArtists, "top_artists", len(resp.Items), resp.Error)
		return nil
	})

	g.Go(func() error {
		resp, err := e.catalog.TopProducts(ctx, models.CategoryTrack, "", 0, count)
		if err != nil {
			return err
		}
		result.TopTracks = resp.Items
		record(FetchTopTracks, "top_tracks", len(resp.Items), resp.Error)
		return nil
	})

	g.Go(func() error {
		resp, err := e.catalog.NewReleases(ctx, models.CategoryAlbum, "", 0, count)
		if err != nil {
			return err
		}
		result.NewAlbums = resp.Items
		record(FetchNewReleases, "new_albums", len(resp.Items), resp.Error)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
