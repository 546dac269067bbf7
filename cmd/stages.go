package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/hitlist/internal/tasks"
	"github.com/desertthunder/hitlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Chart fetches the chart and writes its snapshot.
func (r *Runner) Chart(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.ValidateChart(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var result *tasks.ChartResult
	err := r.withPipeline(asJSON, func(p *tasks.Pipeline) error {
		var err error
		result, err = p.Chart(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result.Entries, true)
	}
	return r.writeChartSummary(result)
}

// Credits collects credits for the latest chart, resuming --task-id when given.
func (r *Runner) Credits(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.ValidateCredits(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var result *tasks.CreditsResult
	err := r.withPipeline(asJSON, func(p *tasks.Pipeline) error {
		var err error
		result, err = p.Credits(ctx, cmd.String("task-id"))
		return err
	})
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result.Entries, true)
	}
	return r.writeCreditsSummary(result)
}

// Videos matches a video for every credited entry.
func (r *Runner) Videos(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.ValidateYouTube(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	var result *tasks.VideosResult
	err := r.withPipeline(asJSON, func(p *tasks.Pipeline) error {
		var err error
		result, err = p.Videos(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result.Entries, true)
	}
	return r.writeVideosSummary(result)
}

// Render writes the static page and optionally opens it.
func (r *Runner) Render(ctx context.Context, cmd *cli.Command) error {
	var result *tasks.RenderResult
	err := r.withPipeline(false, func(p *tasks.Pipeline) error {
		var err error
		result, err = p.Render(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if err := r.writeRenderSummary(result); err != nil {
		return err
	}
	if cmd.Bool("open") {
		return r.openPage(result)
	}
	return nil
}

// Run executes every stage starting at --from.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	from, err := tasks.ParseStage(cmd.String("from"))
	if err != nil {
		return err
	}
	if err := r.validateFrom(from); err != nil {
		return err
	}

	var result *tasks.RunResult
	err = r.withPipeline(false, func(p *tasks.Pipeline) error {
		var err error
		result, err = p.Run(ctx, from, cmd.String("task-id"))
		return err
	})
	if result != nil {
		if werr := r.writeRunSummary(result); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		return r.openPage(result.Render)
	}
	return nil
}

// validateFrom checks the configuration of every stage that will run.
func (r *Runner) validateFrom(from tasks.Stage) error {
	checks := map[tasks.Stage]func() error{
		tasks.StageChart:   r.config.ValidateChart,
		tasks.StageCredits: r.config.ValidateCredits,
		tasks.StageVideos:  r.config.ValidateYouTube,
	}

	started := false
	for _, stage := range tasks.Stages() {
		started = started || stage == from
		if !started {
			continue
		}
		if check, ok := checks[stage]; ok {
			if err := check(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) openPage(result *tasks.RenderResult) error {
	if result == nil || len(result.Files) == 0 {
		return fmt.Errorf("no rendered page to open")
	}
	r.logger.Info("opening page", "path", result.Files[0])
	return r.openBrowser(result.Files[0])
}

func (r *Runner) writeRunSummary(result *tasks.RunResult) error {
	if result.Chart != nil {
		if err := r.writeChartSummary(result.Chart); err != nil {
			return err
		}
	}
	if result.Credits != nil {
		if err := r.writeCreditsSummary(result.Credits); err != nil {
			return err
		}
	}
	if result.Videos != nil {
		if err := r.writeVideosSummary(result.Videos); err != nil {
			return err
		}
	}
	if result.Render != nil {
		if err := r.writeRenderSummary(result.Render); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeChartSummary(result *tasks.ChartResult) error {
	return r.writePlainln("%s", ui.Summary("Chart",
		ui.Row{Label: "Source", Value: r.chart.Name()},
		ui.Row{Label: "Entries", Value: strconv.Itoa(len(result.Entries))},
		ui.Row{Label: "Snapshot", Value: result.SnapshotID},
	))
}

func (r *Runner) writeCreditsSummary(result *tasks.CreditsResult) error {
	return r.writePlainln("%s", ui.Summary("Credits",
		ui.Row{Label: "Task", Value: result.TaskID},
		ui.Row{Label: "Kept", Value: ui.Ratio(result.Report.Kept, result.Report.Kept+result.Report.Dropped)},
		ui.Row{Label: "Dropped lines", Value: strconv.Itoa(result.Report.DroppedLines)},
		ui.Row{Label: "Snapshot", Value: result.SnapshotID},
	))
}

func (r *Runner) writeVideosSummary(result *tasks.VideosResult) error {
	return r.writePlainln("%s", ui.Summary("Videos",
		ui.Row{Label: "Matched", Value: ui.Ratio(result.Matched, result.Total)},
		ui.Row{Label: "Failed searches", Value: strconv.Itoa(result.Failed)},
		ui.Row{Label: "Snapshot", Value: result.SnapshotID},
	))
}

func (r *Runner) writeRenderSummary(result *tasks.RenderResult) error {
	rows := []ui.Row{
		{Label: "Entries", Value: strconv.Itoa(result.Page.Stats.TotalEntries)},
		{Label: "Videos", Value: ui.Ratio(result.Page.Stats.MatchedVideos, result.Page.Stats.TotalEntries)},
		{Label: "Contributors", Value: strconv.Itoa(result.Page.Stats.Contributors)},
	}
	for _, f := range result.Files {
		rows = append(rows, ui.Row{Label: "Wrote", Value: f})
	}
	if len(result.Page.Stats.TopContributors) > 0 {
		top := result.Page.Stats.TopContributors[0]
		rows = append(rows, ui.Row{Label: "Top contributor", Value: fmt.Sprintf("%s (%d)", top.Name, top.Entries)})
	}
	return r.writePlainln("%s", ui.Summary("Render", rows...))
}
