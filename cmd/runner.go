package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitlist/internal/formatter"
	"github.com/desertthunder/hitlist/internal/services"
	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/desertthunder/hitlist/internal/snapshots"
	"github.com/desertthunder/hitlist/internal/tasks"
	"github.com/desertthunder/hitlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	chart       services.ChartSource
	tasks       services.TaskAPI
	search      services.SearchProvider
	store       snapshots.Store
	renderer    tasks.PageRenderer
	openBrowser func(string) error
	now         func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Collaborators left nil are built from Config.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Chart       services.ChartSource
	Tasks       services.TaskAPI
	Search      services.SearchProvider
	Store       snapshots.Store
	Renderer    tasks.PageRenderer
	OpenBrowser func(string) error
	Now         func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	cfg := opts.Config
	if opts.Chart == nil {
		opts.Chart = services.NewHTMLChartSource(cfg.Chart, opts.HTTPClient)
	}
	if opts.Tasks == nil {
		opts.Tasks = services.NewAgentClient(services.AgentOpts{
			BaseURL:    cfg.Credits.BaseURL,
			APIKey:     cfg.Credits.APIKey,
			Timeout:    cfg.Credits.RequestTimeout(),
			HTTPClient: opts.HTTPClient,
		})
	}
	if opts.Search == nil {
		opts.Search = services.NewYouTubeSearch(cfg.YouTube, opts.HTTPClient)
	}
	if opts.Store == nil {
		opts.Store = snapshots.NewFileStore(cfg.Storage.DataDir)
	}
	if opts.Renderer == nil {
		opts.Renderer = formatter.NewSiteRenderer(cfg.Site.OutputDir)
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:      cfg,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		chart:       opts.Chart,
		tasks:       opts.Tasks,
		search:      opts.Search,
		store:       opts.Store,
		renderer:    opts.Renderer,
		openBrowser: opts.OpenBrowser,
		now:         opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		chartCommand, creditsCommand, videosCommand, renderCommand, runCommand,
		snapshotCommand, taskCommand, configCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies global flags before any command runs.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}
	return ctx, nil
}

// pipeline builds a [tasks.Pipeline] over the runner's collaborators.
func (r *Runner) pipeline(progress chan<- tasks.ProgressUpdate) *tasks.Pipeline {
	return tasks.NewPipeline(tasks.PipelineOpts{
		Chart:    r.chart,
		Tasks:    r.tasks,
		Search:   r.search,
		Store:    r.store,
		Renderer: r.renderer,
		Config:   r.config,
		Logger:   r.logger,
		Progress: progress,
		Now:      r.now,
	})
}

// withPipeline runs fn against a fresh pipeline while printing its progress updates.
//
// Updates are only logged when quiet is set.
func (r *Runner) withPipeline(quiet bool, fn func(p *tasks.Pipeline) error) error {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug("progress", "phase", u.Phase, "step", u.Step, "total", u.Total)
			if !quiet {
				r.writePlain("%s\n", ui.Progress(u))
			}
		}
	}()

	err := fn(r.pipeline(progress))
	close(progress)
	<-done

	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
