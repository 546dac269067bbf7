package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func snapshotKindArg(cmd *cli.Command) (models.SnapshotKind, error) {
	kind := models.SnapshotKind(cmd.StringArg("kind"))
	if kind == "" {
		return "", fmt.Errorf("%w: snapshot kind (one of %v)", shared.ErrMissingArgument, models.Kinds())
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown snapshot kind %q (one of %v)", shared.ErrInvalidArgument, kind, models.Kinds())
	}
	return kind, nil
}

// SnapshotList prints the stored snapshot IDs of a kind, newest first.
func (r *Runner) SnapshotList(ctx context.Context, cmd *cli.Command) error {
	kind, err := snapshotKindArg(cmd)
	if err != nil {
		return err
	}

	ids, err := r.store.List(kind)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ids, false)
	}

	if len(ids) == 0 {
		return r.writePlain("no %s snapshots\n", kind)
	}
	r.writePlainHeader(fmt.Sprintf("%s snapshots", kind))
	for _, id := range ids {
		if err := r.writePlain("%s\n", id); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotShow prints a snapshot as JSON.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	kind, err := snapshotKindArg(cmd)
	if err != nil {
		return err
	}

	var snap *models.Snapshot
	if id := cmd.String("id"); id != "" {
		snap, err = r.store.Read(kind, id)
	} else {
		snap, err = r.store.ReadLatest(kind)
	}
	if err != nil {
		return err
	}

	return r.writeJSON(snap, true)
}

// TaskStatus prints the current state of a remote task.
func (r *Runner) TaskStatus(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	if err := r.config.ValidateCredits(); err != nil {
		return err
	}

	task, err := r.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}

	return r.writeJSON(task, true)
}

// ConfigInit writes the example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = DefaultConfigPath
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("Wrote %s\n", path)
}
