// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/hitlist/internal/server"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON instead of a summary",
	}
}

func taskIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "task-id",
		Usage: "Resume waiting on an already submitted credits task",
	}
}

func openFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "open",
		Usage: "Open the rendered page in a browser",
	}
}

// chartCommand fetches the chart
func chartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "chart",
		Usage:  "Fetch the current chart and write the chart snapshot",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Chart,
	}
}

// creditsCommand collects credits through the remote agent
func creditsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "credits",
		Usage:  "Collect credits for the latest chart and write the credits snapshot",
		Flags:  []cli.Flag{taskIDFlag(), jsonFlag()},
		Action: r.Credits,
	}
}

// videosCommand matches videos
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "videos",
		Usage:  "Match a video for every credited entry and write the videos snapshot",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Videos,
	}
}

// renderCommand writes the static page
func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "render",
		Usage:  "Render the latest videos snapshot to the output directory",
		Flags:  []cli.Flag{openFlag()},
		Action: r.Render,
	}
}

// runCommand chains every stage
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the pipeline: chart, credits, videos, render",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Stage to start from (chart, credits, videos, render)",
				Value: "chart",
			},
			taskIDFlag(),
			openFlag(),
		},
		Action: r.Run,
	}
}

// snapshotCommand inspects stored snapshots
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Inspect stored snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshot IDs of a kind, newest first",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind"},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.SnapshotList,
			},
			{
				Name:  "show",
				Usage: "Print a snapshot (the latest unless --id is given)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "kind"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Snapshot ID to show",
					},
				},
				Action: r.SnapshotShow,
			},
		},
	}
}

// taskCommand inspects remote tasks
func taskCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Inspect remote agent tasks",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Print the current state of a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TaskStatus,
			},
		},
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the file (defaults to the active config path)",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}

// serveCommand previews the rendered site locally
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the rendered page and snapshot API for local preview",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: server.DefaultAddr,
				Usage: "Listen address",
			},
			openFlag(),
		},
		Action: r.Serve,
	}
}
