package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixradio/internal/api"
	"github.com/desertthunder/mixradio/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit  = 5.0
	defaultPageSize   = api.DefaultItemsPerPage
	defaultNumWorkers = 4
	maxNumWorkers     = 10
)

// Catalog is the subset of the catalog client the tasks need.
type Catalog interface {
	Genres(ctx context.Context) (*api.ListResponse[models.Genre], error)
	TopArtists(ctx context.Context, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Artist], error)
	TopProducts(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error)
	NewReleases(ctx context.Context, category models.Category, genreID string, startIndex, itemsPerPage int) (*api.ListResponse[models.Product], error)
	UserPlayHistory(ctx context.Context, startIndex, itemsPerPage int) (*api.ListResponse[models.PlayEvent], error)
	UserID() string
}

// HistoryRecorder persists play events, skipping ones it already has.
type HistoryRecorder interface {
	Record(ctx context.Context, userID string, events []models.PlayEvent) (int, error)
}

// Engine runs catalog jobs.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an [Engine] over catalog.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// PageFunc fetches one page of a list operation.
type PageFunc[E any] func(ctx context.Context, startIndex, itemsPerPage int) (*api.ListResponse[E], error)

// CollectOpts configures [CollectPages].
type CollectOpts struct {
	PageSize  int     // items per request, default 10
	MaxItems  int     // stop after this many items, 0 for no cap
	RateLimit float64 // requests per second, default 5
	Phase     Phase   // reported on every update
}

// CollectPages calls fetch with increasing start indexes and concatenates the items.
//
// When the service reports paging, the start index advances by the requested page size and
// collection stops once it reaches the total, so items dropped by the converter do not end
// paging early. Without paging a short page is the last one. MaxItems caps the result either
// way. A failed page returns the items collected so far along with the page's error, so
// callers can keep partial results.
func CollectPages[E any](ctx context.Context, fetch PageFunc[E], opts CollectOpts, progress chan<- ProgressUpdate) ([]E, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var items []E
	offset := 0
	for page := 1; ; page++ {
		size := opts.PageSize
		if opts.MaxItems > 0 && opts.MaxItems-len(items) < size {
			size = opts.MaxItems - len(items)
		}

		if err := limiter.Wait(ctx); err != nil {
			return items, err
		}

		resp, err := fetch(ctx, offset, size)
		if err != nil {
			return items, err
		}
		if resp.Error != nil {
			return items, resp.Error
		}

		items = append(items, resp.Items...)

		total := 0
		if resp.HasPaging() {
			total = *resp.TotalResults
		}
		sendProgress(progress, pageUpdate(opts.Phase, page, len(items), total))

		if opts.MaxItems > 0 && len(items) >= opts.MaxItems {
			return items, nil
		}
		if resp.HasPaging() {
			offset += size
			if offset >= total {
				return items, nil
			}
			continue
		}
		if len(resp.Items) < size {
			return items, nil
		}
		offset += len(resp.Items)
	}
}

// SyncResult summarises a history sync.
type SyncResult struct {
	UserID  string
	Fetched int
	Added   int
}

// SyncHistory collects up to maxItems plays (0 for all) and hands them to recorder.
func (e *Engine) SyncHistory(ctx context.Context, recorder HistoryRecorder, maxItems int, progress chan<- ProgressUpdate) (*SyncResult, error) {
	events, err := CollectPages(ctx, e.catalog.UserPlayHistory, CollectOpts{MaxItems: maxItems, Phase: RecordHistory}, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch play history: %w", err)
	}

	userID := e.catalog.UserID()
	result := &SyncResult{UserID: userID, Fetched: len(events)}
	if len(events) == 0 {
		return result, nil
	}

	added, err := recorder.Record(ctx, userID, events)
	if err != nil {
		return result, fmt.Errorf("failed to record play history: %w", err)
	}
	result.Added = added
	sendProgress(progress, historyUpdate(1, 1, added))
	return result, nil
}
