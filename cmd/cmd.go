// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags(pretty bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: pretty,
		},
	}
}

// setupCommand creates the config file and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "Spotify client id to write into the config file",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent database migration",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authorization with Spotify
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify access token",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize jam in the browser and cache the access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "locator",
						Usage: "Redirect URL (or its fragment) copied from the browser, skips the callback server",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Discard a cached token and authorize again",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a valid access token is cached",
				Flags:  outputFlags(true),
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the cached access token",
				Action: r.AuthLogout,
			},
		},
	}
}

// searchCommand searches the catalog for tracks
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search Spotify for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "recent",
				Usage: "List tracks from earlier searches instead of calling Spotify",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to show",
				Value: 20,
			},
		}, outputFlags(false)...),
		Action: r.Search,
	}
}

// trackCommand looks up a single track
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Show a single track by id",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags:  outputFlags(true),
		Action: r.Track,
	}
}

// draftCommand edits the playlist being built
func draftCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "draft",
		Aliases: []string{"d"},
		Usage:   "Edit the playlist being built",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the draft name and tracks",
				Flags:  outputFlags(true),
				Action: r.DraftShow,
			},
			{
				Name:  "name",
				Usage: "Rename the draft",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.DraftName,
			},
			{
				Name:  "add",
				Usage: "Add a track by id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.DraftAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a track by id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.DraftRemove,
			},
			{
				Name:  "clear",
				Usage: "Reset the draft to an empty \"New Playlist\"",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.DraftClear,
			},
			{
				Name:  "export",
				Usage: "Write the draft to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to a name derived from the draft)",
					},
				},
				Action: r.DraftExport,
			},
		},
	}
}

// saveCommand saves the draft to the user's account
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save the draft as a new Spotify playlist",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Rename the draft before saving",
			},
		}, outputFlags(true)...),
		Action: r.Save,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist builder",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/jam-tui.log",
			},
		},
		Action: r.TUI,
	}
}
