package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/desertthunder/hitlist/internal/formatter"
	"github.com/desertthunder/hitlist/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the preview server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	dir := r.config.Site.OutputDir
	if site, ok := r.renderer.(*formatter.SiteRenderer); ok {
		dir = site.Dir()
	}
	if _, err := os.Stat(filepath.Join(dir, formatter.IndexFile)); err != nil {
		r.logger.Warn("no rendered page yet, run `hitlist render` first", "dir", dir)
	}

	srv := server.NewPreviewServer(server.PreviewOpts{
		Addr:    cmd.String("addr"),
		SiteDir: dir,
		Store:   r.store,
		Logger:  r.logger,
	})

	if cmd.Bool("open") {
		if err := r.openBrowser("http://" + srv.Addr + "/"); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return server.Serve(ctx, srv, r.logger)
}
