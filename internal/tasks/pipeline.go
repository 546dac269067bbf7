package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitlist/internal/formatter"
	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/services"
	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/desertthunder/hitlist/internal/snapshots"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageChart   Stage = "chart"
	StageCredits Stage = "credits"
	StageVideos  Stage = "videos"
	StageRender  Stage = "render"
)

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageChart, StageCredits, StageVideos, StageRender}
}

// ParseStage converts a stage name; an empty name means [StageChart].
func ParseStage(name string) (Stage, error) {
	if name == "" {
		return StageChart, nil
	}
	for _, s := range Stages() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown stage %q", shared.ErrInvalidArgument, name)
}

// StageError reports which stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// PageRenderer turns the final page into static output files.
type PageRenderer interface {
	Render(page *formatter.Page) ([]string, error)
}

// PipelineOpts contains the collaborators and settings of a [Pipeline].
//
// Collaborators a stage does not use may be nil; the stage fails with
// [shared.ErrServiceUnavailable] if it is run without them.
type PipelineOpts struct {
	Chart    services.ChartSource
	Tasks    services.TaskAPI
	Search   services.SearchProvider
	Store    snapshots.Store
	Renderer PageRenderer
	Config   *shared.Config
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
	Now      func() time.Time
}

// Pipeline runs the chart, credits, videos and render stages.
//
// Each stage reads the latest snapshot of the previous stage and writes its own only on success.
type Pipeline struct {
	chart    services.ChartSource
	store    snapshots.Store
	renderer PageRenderer
	credits  *CreditsTaskClient
	matcher  *VideoMatcher
	config   *shared.Config
	logger   *log.Logger
	progress chan<- ProgressUpdate
	now      func() time.Time
	hasTasks bool
	hasVideo bool
}

// NewPipeline creates a pipeline from opts.
func NewPipeline(opts PipelineOpts) *Pipeline {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cfg := opts.Config
	return &Pipeline{
		chart:    opts.Chart,
		store:    opts.Store,
		renderer: opts.Renderer,
		credits: NewCreditsTaskClient(opts.Tasks, CreditsOpts{
			TaskType: cfg.Credits.TaskType,
			Logger:   shared.WithLogger(opts.Logger, "stage", StageCredits),
			Progress: opts.Progress,
		}),
		matcher: NewVideoMatcher(opts.Search, MatcherOpts{
			Delay:    cfg.YouTube.InterRequestDelay(),
			Logger:   shared.WithLogger(opts.Logger, "stage", StageVideos),
			Progress: opts.Progress,
		}),
		config:   cfg,
		logger:   opts.Logger,
		progress: opts.Progress,
		now:      opts.Now,
		hasTasks: opts.Tasks != nil,
		hasVideo: opts.Search != nil,
	}
}

// ChartResult is the output of [Pipeline.Chart].
type ChartResult struct {
	Entries    []models.ChartEntry
	SnapshotID string
}

// CreditsResult is the output of [Pipeline.Credits].
type CreditsResult struct {
	TaskID     string
	Entries    []models.CreditedEntry
	Report     *CleanReport
	SnapshotID string
}

// VideosResult is the output of [Pipeline.Videos].
type VideosResult struct {
	*EnrichResult
	SnapshotID string
}

// RenderResult is the output of [Pipeline.Render].
type RenderResult struct {
	Page  *formatter.Page
	Files []string
}

// RunResult collects the output of every stage executed by [Pipeline.Run].
type RunResult struct {
	Chart   *ChartResult
	Credits *CreditsResult
	Videos  *VideosResult
	Render  *RenderResult
}

// Chart fetches the chart, checks that ranks run 1..N, and writes the chart snapshot.
func (p *Pipeline) Chart(ctx context.Context) (*ChartResult, error) {
	if p.chart == nil {
		return nil, stageErr(StageChart, fmt.Errorf("%w: chart source not configured", shared.ErrServiceUnavailable))
	}
	if err := p.checkStore(); err != nil {
		return nil, stageErr(StageChart, err)
	}

	sendProgress(p.progress, fetchChartUpdate(p.chart.Name()))

	entries, err := p.chart.FetchChart(ctx)
	if err != nil {
		return nil, stageErr(StageChart, err)
	}

	if limit := p.config.Chart.Limit; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if err := ValidateChart(entries); err != nil {
		return nil, stageErr(StageChart, err)
	}

	id, err := snapshots.Save(p.store, models.KindChart, p.chart.Name(), entries)
	if err != nil {
		return nil, stageErr(StageChart, err)
	}
	sendProgress(p.progress, writeSnapshotUpdate(models.KindChart, id))

	p.logger.Info("chart stage complete", "entries", len(entries), "snapshot", id)
	return &ChartResult{Entries: entries, SnapshotID: id}, nil
}

// Credits submits the latest chart to the remote agent, waits for the result, and writes the credits snapshot.
//
// A non-empty taskID resumes an already submitted task instead of submitting a new one.
func (p *Pipeline) Credits(ctx context.Context, taskID string) (*CreditsResult, error) {
	if !p.hasTasks {
		return nil, stageErr(StageCredits, fmt.Errorf("%w: task API not configured", shared.ErrServiceUnavailable))
	}
	if err := p.checkStore(); err != nil {
		return nil, stageErr(StageCredits, err)
	}

	chart, _, err := snapshots.Load[models.ChartEntry](p.store, models.KindChart)
	if err != nil {
		return nil, stageErr(StageCredits, upstream(err, StageChart))
	}

	if taskID == "" {
		taskID, err = p.credits.Submit(ctx, chart)
		if err != nil {
			return nil, stageErr(StageCredits, err)
		}
	} else {
		p.logger.Info("resuming credits task", "task_id", taskID)
	}

	payload, err := p.credits.AwaitCompletion(ctx, taskID, p.config.Credits.PollInterval(), p.config.Credits.MaxAttempts)
	if err != nil {
		return nil, stageErr(StageCredits, err)
	}

	entries, report, err := p.credits.ValidateAndClean(payload)
	if err != nil {
		return nil, stageErr(StageCredits, err)
	}
	if len(chart) > 0 && report.Kept == 0 {
		return nil, stageErr(StageCredits, fmt.Errorf("%w: task %s returned no usable entries (%d dropped)", shared.ErrSchema, taskID, report.Dropped))
	}

	id, err := snapshots.Save(p.store, models.KindCredits, "agent:"+taskID, entries)
	if err != nil {
		return nil, stageErr(StageCredits, err)
	}
	sendProgress(p.progress, writeSnapshotUpdate(models.KindCredits, id))

	p.logger.Info("credits stage complete", "kept", report.Kept, "dropped", report.Dropped, "snapshot", id)
	return &CreditsResult{TaskID: taskID, Entries: entries, Report: report, SnapshotID: id}, nil
}

// Videos matches a video for every entry of the latest credits snapshot and writes the videos snapshot.
func (p *Pipeline) Videos(ctx context.Context) (*VideosResult, error) {
	if !p.hasVideo {
		return nil, stageErr(StageVideos, fmt.Errorf("%w: search provider not configured", shared.ErrServiceUnavailable))
	}
	if err := p.checkStore(); err != nil {
		return nil, stageErr(StageVideos, err)
	}

	credited, _, err := snapshots.Load[models.CreditedEntry](p.store, models.KindCredits)
	if err != nil {
		return nil, stageErr(StageVideos, upstream(err, StageCredits))
	}

	result, err := p.matcher.EnrichAll(ctx, credited)
	if err != nil {
		return nil, stageErr(StageVideos, err)
	}

	id, err := snapshots.Save(p.store, models.KindVideos, "youtube", result.Entries)
	if err != nil {
		return nil, stageErr(StageVideos, err)
	}
	sendProgress(p.progress, writeSnapshotUpdate(models.KindVideos, id))

	p.logger.Info("videos stage complete", "matched", result.Matched, "total", result.Total, "snapshot", id)
	return &VideosResult{EnrichResult: result, SnapshotID: id}, nil
}

// Render builds the page from the latest videos snapshot and hands it to the renderer.
func (p *Pipeline) Render(ctx context.Context) (*RenderResult, error) {
	if p.renderer == nil {
		return nil, stageErr(StageRender, fmt.Errorf("%w: renderer not configured", shared.ErrServiceUnavailable))
	}
	if err := p.checkStore(); err != nil {
		return nil, stageErr(StageRender, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageRender, err)
	}

	entries, _, err := snapshots.Load[models.EnrichedEntry](p.store, models.KindVideos)
	if err != nil {
		return nil, stageErr(StageRender, upstream(err, StageVideos))
	}

	page := formatter.NewPage(p.config.Site.Title, p.now(), entries)
	files, err := p.renderer.Render(page)
	if err != nil {
		return nil, stageErr(StageRender, err)
	}
	sendProgress(p.progress, renderPageUpdate(files))

	p.logger.Info("render stage complete", "files", len(files), "matched", page.Stats.MatchedVideos, "total", page.Stats.TotalEntries)
	return &RenderResult{Page: page, Files: files}, nil
}

// Run executes the stages from `from` through render, stopping at the first failure.
//
// taskID is passed to the credits stage to resume a submitted task.
func (p *Pipeline) Run(ctx context.Context, from Stage, taskID string) (*RunResult, error) {
	if from == "" {
		from = StageChart
	}
	if _, err := ParseStage(string(from)); err != nil {
		return nil, err
	}

	result := &RunResult{}
	started := false
	for _, stage := range Stages() {
		if stage == from {
			started = true
		}
		if !started {
			continue
		}

		var err error
		switch stage {
		case StageChart:
			result.Chart, err = p.Chart(ctx)
		case StageCredits:
			result.Credits, err = p.Credits(ctx, taskID)
		case StageVideos:
			result.Videos, err = p.Videos(ctx)
		case StageRender:
			result.Render, err = p.Render(ctx)
		}
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// ValidateChart checks that entries carry unique ranks 1..N in order with an artist and title.
func ValidateChart(entries []models.ChartEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: chart is empty", shared.ErrInvalidChart)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: expected rank %d at position %d, got %d", shared.ErrInvalidChart, i+1, i+1, e.Rank)
		}
		if e.Artist == "" || e.Title == "" {
			return fmt.Errorf("%w: rank %d is missing artist or title", shared.ErrInvalidChart, e.Rank)
		}
	}
	return nil
}

func (p *Pipeline) checkStore() error {
	if p.store == nil {
		return fmt.Errorf("%w: snapshot store not configured", shared.ErrServiceUnavailable)
	}
	return nil
}

// upstream adds a hint naming the stage to run when its snapshot is missing.
func upstream(err error, stage Stage) error {
	if errors.Is(err, shared.ErrSnapshotNotFound) {
		return fmt.Errorf("%w (run `hitlist %s` first)", err, stage)
	}
	return err
}
