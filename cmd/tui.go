package main

import (
	"context"
	"os"

	"github.com/desertthunder/jam/internal/shared"
	"github.com/desertthunder/jam/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist builder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logFile, err := shared.OpenLogFile(cmd.String("log-file"))
	if err != nil {
		return err
	}
	defer logFile.Close()
	r.logger.SetOutput(logFile)
	defer r.logger.SetOutput(os.Stderr)

	return ui.Run(ctx, ui.Options{
		Builder: r.client,
		Drafts:  r.drafts,
		Logger:  r.logger,
	})
}
