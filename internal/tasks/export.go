package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/mixradio/internal/formatter"
	"github.com/desertthunder/mixradio/internal/models"
	"golang.org/x/time/rate"
)

// ExportOpts configures [Engine.ExportGenreCharts].
type ExportOpts struct {
	Format     formatter.Format // default json
	Category   models.Category  // album or track, default track
	Count      int              // chart length, default 10
	OutputDir  string           // default charts_export_{epoch}
	NumWorkers int              // default 4, capped at 10
	RateLimit  float64          // chart requests per second, default 5
}

// ChartExportResult is the outcome for one genre.
type ChartExportResult struct {
	Genre models.Genre
	Files []string
	Error error
}

// ExportResult summarises a multi-genre export.
type ExportResult struct {
	Results      []ChartExportResult
	Succeeded    int
	Failed       int
	OutputDir    string
	ManifestPath string
}

type chartJob struct {
	index int
	genre models.Genre
}

// ExportGenreCharts writes the top chart of every genre in genres (all genres when empty).
//
// Requests are paced by a shared limiter and run on a small worker pool. A genre that fails is
// recorded in the manifest and the rest carry on.
func (e *Engine) ExportGenreCharts(ctx context.Context, genres []models.Genre, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.Category == models.CategoryUnknown {
		opts.Category = models.CategoryTrack
	}
	if opts.Count <= 0 {
		opts.Count = defaultPageSize
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("charts_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultNumWorkers
	}
	if opts.NumWorkers > maxNumWorkers {
		opts.NumWorkers = maxNumWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	if len(genres) == 0 {
		resp, err := e.catalog.Genres(ctx)
		if err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("failed to list genres: %w", resp.Error)
		}
		genres = resp.Items
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan chartJob)
	results := make([]ChartExportResult, len(genres))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := e.exportChart(ctx, limiter, job.genre, opts)
				results[job.index] = res

				mu.Lock()
				completed++
				if res.Error != nil {
					sendProgress(progress, exportFailedUpdate(completed, len(genres), job.genre.Name, res.Error))
				} else {
					sendProgress(progress, exportCompletedUpdate(completed, len(genres), job.genre.Name, len(res.Files)))
				}
				mu.Unlock()
			}
		}()
	}

	for i, genre := range genres {
		sendProgress(progress, exportingChartUpdate(i+1, len(genres), genre.Name))
		select {
		case jobs <- chartJob{index: i, genre: genre}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ExportResult{Results: results, OutputDir: opts.OutputDir}
	manifest := &formatter.Manifest{CreatedAt: time.Now().UTC(), Format: opts.Format, Directory: opts.OutputDir}
	for _, res := range results {
		entry := formatter.ManifestEntry{ID: res.Genre.ID, Title: res.Genre.Name, Files: res.Files}
		if res.Error != nil {
			result.Failed++
			entry.Error = res.Error.Error()
		} else {
			result.Succeeded++
		}
		manifest.Entries = append(manifest.Entries, entry)
	}
	manifest.Succeeded, manifest.Failed = result.Succeeded, result.Failed

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *Engine) exportChart(ctx context.Context, limiter *rate.Limiter, genre models.Genre, opts ExportOpts) ChartExportResult {
	res := ChartExportResult{Genre: genre}

	if err := limiter.Wait(ctx); err != nil {
		res.Error = err
		return res
	}

	resp, err := e.catalog.TopProducts(ctx, opts.Category, genre.ID, 0, opts.Count)
	if err != nil {
		res.Error = err
		return res
	}
	if resp.Error != nil {
		res.Error = fmt.Errorf("chart request failed: %w", resp.Error)
		return res
	}

	chart := &formatter.Chart{
		ID:       genre.ID,
		Title:    fmt.Sprintf("Top %ss: %s", opts.Category, genre.Name),
		Products: resp.Items,
	}
	path, err := formatter.WriteExport(chart, opts.Format, opts.OutputDir, "")
	if err != nil {
		res.Error = err
		return res
	}
	res.Files = []string{path}
	return res
}
