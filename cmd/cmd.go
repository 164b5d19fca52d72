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

// setupCommand initializes the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration and database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// providersCommand lists the configured providers.
func providersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List configured providers and credential status",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Providers,
	}
}

// migrateCommand runs a full playlist migration.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate a playlist from one provider to another",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Source provider (spotify, deezer, tidal, youtube)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "playlist",
				Aliases:  []string{"p"},
				Usage:    "Source playlist ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Destination provider",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Destination playlist name (defaults to the source name)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the final job as JSON",
			},
		},
		Action: r.Migrate,
	}
}

// jobsCommand inspects persisted migration jobs.
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Inspect migration jobs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List migration jobs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (queued, running, succeeded, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.JobsList,
			},
			{
				Name:  "show",
				Usage: "Show one job with its match report",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"o"},
						Usage:   "Write a Markdown report to this base path",
					},
				},
				Action: r.JobsShow,
			},
		},
	}
}

// exportCommand dumps a source playlist without writing anywhere.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a playlist to CSV, Markdown, or plain text",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Source provider",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "playlist",
				Aliases:  []string{"p"},
				Usage:    "Source playlist ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: csv, markdown, text",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base path for CSV output (writes {base}_tracks.csv)",
			},
		},
		Action: r.Export,
	}
}

// resolveCommand runs the matcher against a destination catalog for a single
// track.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a single track against a provider's catalog",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "provider",
				Usage:    "Provider whose catalog to search",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "title",
				Usage:    "Track title",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "artist",
				Usage:    "Primary artist",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "duration-ms",
				Usage: "Track duration in milliseconds (0 for unknown)",
			},
			&cli.StringFlag{
				Name:  "isrc",
				Usage: "ISRC of the source track",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}
