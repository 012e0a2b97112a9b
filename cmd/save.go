package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/jam/internal/services"
	"github.com/urfave/cli/v3"
)

// Save creates a Spotify playlist from the draft and resets the draft once every step has succeeded.
//
// An empty name or an empty draft makes no API calls. The client logs a failed request and reports
// nothing saved; the draft is kept so the save can be retried. A failure after the playlist was
// created leaves an empty playlist on the account.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	d, err := r.drafts.Get()
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(cmd.String("name")); name != "" {
		if d, err = r.drafts.Rename(name); err != nil {
			return err
		}
	}

	if d.Name == "" || d.Len() == 0 {
		return r.writePlain("⚠ Nothing to save: name the draft and add at least one track\n")
	}

	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	var result *services.SaveResult
	title := fmt.Sprintf("Saving %q (%d tracks)...", d.Name, d.Len())
	err = r.spin(ctx, title, func(ctx context.Context) error {
		var err error
		result, err = r.client.SavePlaylist(ctx, d.Name, d.URIs())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}
	if result == nil {
		r.logger.Warn("playlist was not saved, draft kept", "name", d.Name, "tracks", d.Len())
		return r.writePlain("⚠ Nothing was saved. Check the log for the failed request and try again.\n")
	}

	if err := r.drafts.Reset(); err != nil {
		r.logger.Warn("playlist saved but the draft could not be reset", "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Saved %q with %d tracks\n", result.Name, result.TracksAdded)
	if result.URL != "" {
		r.writePlain("  %s\n", result.URL)
	}
	return nil
}
