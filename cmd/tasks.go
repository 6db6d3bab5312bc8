package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixradio/internal/formatter"
	"github.com/desertthunder/mixradio/internal/models"
	"github.com/desertthunder/mixradio/internal/repositories"
	"github.com/desertthunder/mixradio/internal/tasks"
	"github.com/urfave/cli/v3"
)

// trackProgress logs task updates until the returned stop func is called.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()
	return progress, func() {
		close(progress)
		<-done
	}
}

// HistorySync pulls the user's play history into the local database.
func (r *Runner) HistorySync(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	progress, stop := r.trackProgress()
	result, err := tasks.NewEngine(client).SyncHistory(ctx, repositories.NewPlayEventRepository(db), cmd.Int("max"), progress)
	stop()
	if err != nil {
		return err
	}

	return r.emit(cmd, result, func() {
		r.writePlain("✓ Fetched %d plays for %s\n", result.Fetched, result.UserID)
		r.writePlain("  New: %d\n", result.Added)
	})
}

// HistoryList prints plays stored by [Runner.HistorySync], newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	repo := repositories.NewPlayEventRepository(db)
	events, err := repo.List(ctx, client.UserID(), cmd.Int("limit"))
	if err != nil {
		return err
	}

	return r.emit(cmd, events, func() {
		if len(events) == 0 {
			r.writePlain("No plays stored. Run 'mixradio history sync' first.\n")
			return
		}
		for i, e := range events {
			r.writePlain("%d. %s - %s\n", i+1, e.Product.PerformerNames(), e.Product.Name)
			r.writePlain("   %s %s\n", e.Action, e.PlayedAt.Local().Format("2006-01-02 15:04"))
		}
	})
}

// HistoryArtists prints the user's most played artists.
func (r *Runner) HistoryArtists(ctx context.Context, cmd *cli.Command) error {
	client, err := r.requireUser(ctx)
	if err != nil {
		return err
	}
	start := cmd.Int("start")
	resp, err := items(client.UserTopArtists(ctx, start, cmd.Int("count")))
	if err != nil {
		return err
	}
	return r.emit(cmd, resp.Items, func() {
		r.writePlainHeader("Your top artists")
		r.writeArtists(resp.Items, start)
		writePaging(r, resp)
	})
}

// Overview prints the genre list and the three headline charts.
func (r *Runner) Overview(ctx context.Context, cmd *cli.Command) error {
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.trackProgress()
	result, err := tasks.NewEngine(client).Overview(ctx, cmd.Int("count"), progress)
	stop()
	if err != nil {
		return err
	}

	return r.emit(cmd, result, func() {
		r.writePlainHeader("Top artists")
		r.writeArtists(result.TopArtists, 0)
		r.writePlainln("")
		r.writePlainHeader("Top tracks")
		r.writeProducts(result.TopTracks, 0)
		r.writePlainln("")
		r.writePlainHeader("New albums")
		r.writeProducts(result.NewAlbums, 0)
		r.writePlainln("Genres: %d", len(result.Genres))

		for _, e := range result.Errors {
			r.writePlain("⚠ %s: %v\n", e.Section, e.Error)
		}
	})
}

// Export writes one chart file per genre plus a manifest.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	category, err := parseCategory(cmd)
	if err != nil {
		return err
	}
	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	var genres []models.Genre
	for _, name := range cmd.StringSlice("genre") {
		genre, err := client.ResolveGenre(ctx, name)
		if err != nil {
			return err
		}
		genres = append(genres, genre)
	}

	progress, stop := r.trackProgress()
	result, err := tasks.NewEngine(client).ExportGenreCharts(ctx, genres, tasks.ExportOpts{
		Format:     format,
		Category:   category,
		Count:      cmd.Int("count"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}, progress)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d charts to %s\n", result.Succeeded, result.OutputDir)
	if result.Failed > 0 {
		r.writePlain("⚠ %d charts failed:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  %s: %v\n", res.Genre.Name, res.Error)
			}
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.Succeeded == 0 && result.Failed > 0 {
		return fmt.Errorf("export failed for every genre")
	}
	return nil
}
