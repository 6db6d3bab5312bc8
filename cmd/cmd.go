// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// globalFlags are accepted by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "yaml",
			Usage: "Output YAML",
		},
		&cli.StringFlag{
			Name:  "jq",
			Usage: "Filter JSON output with a jq expression",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log requests at debug level",
		},
	}
}

func pagingFlags(count int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "start",
			Usage: "Zero based index of the first item",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of items to return",
			Value:   count,
		},
	}
}

func withFlags(flags []cli.Flag, more ...cli.Flag) []cli.Flag {
	return append(more, flags...)
}

func categoryFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:  "category",
		Usage: "Product category (album, track, single)",
		Value: value,
	}
}

func genreFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "genre",
		Aliases: []string{"g"},
		Usage:   "Genre id or name",
	}
}

func orderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "order",
			Usage: "Order by relevance, releasedate or name",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort order (asc or desc)",
		},
	}
}

func locationFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:     "lat",
			Usage:    "Latitude",
			Required: required,
		},
		&cli.FloatFlag{
			Name:     "lon",
			Usage:    "Longitude",
			Required: required,
		},
		&cli.IntFlag{
			Name:  "max-distance",
			Usage: "Maximum distance in km",
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations and whether they are applied",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles user sign in.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the user token",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through the browser and store the user token",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening it",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored user token",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored user token",
				Action: r.AuthLogout,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	flags := withFlags(pagingFlags(10), categoryFlag(""), genreFlag(),
		&cli.IntFlag{Name: "min-bpm", Usage: "Minimum beats per minute"},
		&cli.IntFlag{Name: "max-bpm", Usage: "Maximum beats per minute"},
	)
	flags = append(flags, orderFlags()...)
	flags = append(flags, locationFlags(false)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search artists and products",
		Arguments: []cli.Argument{&cli.StringArg{Name: "term"}},
		Flags:     flags,
		Action:    r.Search,
	}
}

func suggestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Typeahead suggestions for a partial term",
		Arguments: []cli.Argument{&cli.StringArg{Name: "term"}},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Maximum suggestions",
				Value:   3,
			},
		},
		Action: r.Suggest,
	}
}

// artistCommand groups the artist lookups.
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Artist lookups",
		Commands: []*cli.Command{
			{
				Name:      "products",
				Usage:     "List an artist's products",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     append(withFlags(pagingFlags(10), categoryFlag("")), orderFlags()...),
				Action:    r.ArtistProducts,
			},
			{
				Name:      "similar",
				Usage:     "List artists similar to an artist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     pagingFlags(10),
				Action:    r.ArtistSimilar,
			},
			{
				Name:   "near",
				Usage:  "List artists from around a location",
				Flags:  withFlags(pagingFlags(10), locationFlags(true)...),
				Action: r.ArtistNear,
			},
		},
	}
}

func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "charts",
		Usage: "Top charts",
		Commands: []*cli.Command{
			{
				Name:   "artists",
				Usage:  "Most played artists",
				Flags:  withFlags(pagingFlags(10), genreFlag()),
				Action: r.ChartsArtists,
			},
			{
				Name:   "products",
				Usage:  "Top albums or tracks",
				Flags:  withFlags(pagingFlags(10), categoryFlag("album"), genreFlag()),
				Action: r.ChartsProducts,
			},
		},
	}
}

func newReleasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "new",
		Usage:  "New albums or tracks",
		Flags:  withFlags(pagingFlags(10), categoryFlag("album"), genreFlag()),
		Action: r.NewReleases,
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "genres",
		Usage:  "List the territory's genres",
		Action: r.Genres,
	}
}

func mixesCommand(r *Runner) *cli.Command {
	exclusive := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "exclusive",
			Usage: "Partner tag for exclusive mixes",
		}
	}
	return &cli.Command{
		Name:  "mixes",
		Usage: "Curated mixes",
		Commands: []*cli.Command{
			{
				Name:   "groups",
				Usage:  "List mix groups",
				Flags:  withFlags(pagingFlags(10), exclusive()),
				Action: r.MixGroups,
			},
			{
				Name:      "list",
				Usage:     "List the mixes of a group",
				Arguments: []cli.Argument{&cli.StringArg{Name: "group"}},
				Flags:     withFlags(pagingFlags(10), exclusive()),
				Action:    r.MixesList,
			},
			{
				Name:      "show",
				Usage:     "Show a single mix",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.MixShow,
			},
		},
	}
}

func productCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "product",
		Usage:     "Show a single album, single or track",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Action:    r.Product,
	}
}

// historyCommand handles the signed in user's play history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Play history of the signed in user",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Fetch play history into the local database",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max",
						Usage: "Stop after this many plays (0 for all)",
						Value: 200,
					},
				},
				Action: r.HistorySync,
			},
			{
				Name:  "list",
				Usage: "List plays stored in the local database",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum plays to list",
						Value:   20,
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:   "artists",
				Usage:  "The user's most played artists",
				Flags:  pagingFlags(10),
				Action: r.HistoryArtists,
			},
		},
	}
}

func overviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "Genres, top artists, top tracks and new albums at a glance",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Items per section",
				Value:   5,
			},
		},
		Action: r.Overview,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the top chart of each genre to files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (json, csv, markdown, txt, yaml)",
				Value:   "json",
			},
			categoryFlag("track"),
			&cli.StringSliceFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre to export (repeatable, default all)",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Chart length",
				Value:   10,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent chart downloads",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Chart requests per second",
				Value: 5,
			},
		},
		Action: r.Export,
	}
}

// browseCommand returns the top-level TUI command.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Open on the results of a search",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Items per list",
				Value:   20,
			},
		},
		Action: r.Browse,
	}
}

func availableCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "available",
		Usage:  "Check whether the service is offered in the configured territory",
		Action: r.Available,
	}
}
