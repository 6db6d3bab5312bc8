package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/mixradio/internal/catalog"
	"github.com/desertthunder/mixradio/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive catalog browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Logs would draw over the alt screen
	r.logger.SetOutput(io.Discard)

	client, err := r.catalog(ctx)
	if err != nil {
		return err
	}

	opts := []ui.Option{ui.WithCount(cmd.Int("count"))}
	if term := cmd.String("search"); term != "" {
		resp, err := items(client.Search(ctx, catalog.SearchParams{Term: term, ItemsPerPage: cmd.Int("count")}))
		if err != nil {
			return err
		}
		opts = append(opts, ui.WithResults("Search: "+term, resp.Items))
	}

	if err := ui.Run(ctx, client, opts...); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
