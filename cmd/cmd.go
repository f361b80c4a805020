// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.SpotifyAuth,
	}
}

// runCommand processes configured filters
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Scan shows and add matching episodes to playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "Process only the filter with this name",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match and report without adding episodes",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Directory to write a run report to",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format (json, csv, markdown, txt)",
				Value: "json",
			},
		},
		Action: r.Run,
	}
}

// filtersCommand inspects configured filter rules
func filtersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "Inspect configured filter rules",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured filters",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FiltersList,
			},
			{
				Name:  "check",
				Usage: "Validate filter references and patterns",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.FiltersCheck,
			},
		},
	}
}

// showCommand handles show inspection
func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Spotify show operations",
		Commands: []*cli.Command{
			{
				Name:  "episodes",
				Usage: "List a show's most recent episodes",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Show ID or open.spotify.com URL",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of episodes to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ShowEpisodes,
			},
		},
	}
}

// playlistCommand handles playlist inspection
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "items",
				Usage: "List a playlist's current items",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID or open.spotify.com URL",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistItems,
			},
		},
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent run summaries",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config file from the bundled template",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive filter runs.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for filter runs",
		Action:  r.TUI,
	}
}
