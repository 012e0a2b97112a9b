package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/auth"
	"github.com/desertthunder/jam/internal/repositories"
	"github.com/desertthunder/jam/internal/services"
	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

// SpinFunc runs action while showing title. Tests replace it with a direct call.
type SpinFunc func(ctx context.Context, title string, action func(context.Context) error) error

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(title string) (bool, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	auth       *auth.Manager
	client     services.PlaylistBuilder
	drafts     *repositories.DraftRepository
	tracks     *repositories.TrackRepository
	logger     *log.Logger
	output     io.Writer
	spin       SpinFunc
	confirm    ConfirmFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Auth       *auth.Manager
	Client     services.PlaylistBuilder
	Drafts     *repositories.DraftRepository
	Tracks     *repositories.TrackRepository
	Logger     *log.Logger
	Output     io.Writer
	Spin       SpinFunc
	Confirm    ConfirmFunc
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
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Spin == nil {
		opts.Spin = runSpinner
	}
	if opts.Confirm == nil {
		opts.Confirm = askConfirm
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		auth:       opts.Auth,
		client:     opts.Client,
		drafts:     opts.Drafts,
		tracks:     opts.Tracks,
		logger:     opts.Logger,
		output:     opts.Output,
		spin:       opts.Spin,
		confirm:    opts.Confirm,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, trackCommand, draftCommand, saveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) requireClient() error {
	if r.client == nil {
		return fmt.Errorf("%w: Spotify client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) requireDrafts() error {
	if r.drafts == nil {
		return fmt.Errorf("%w: draft storage not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func runSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}

func askConfirm(title string) (bool, error) {
	var ok bool
	if err := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
