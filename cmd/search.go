package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints tracks matching the query argument.
//
// Search never fails on API errors: they are logged by the client and the result is empty.
// With --recent the local track cache is listed instead.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	if cmd.Bool("recent") {
		if r.tracks == nil {
			return fmt.Errorf("%w: track cache not initialized", shared.ErrServiceUnavailable)
		}
		tracks, err := r.tracks.Recent(limit)
		if err != nil {
			return err
		}
		return r.printTracks("Recently seen tracks", tracks, cmd)
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if err := r.requireClient(); err != nil {
		return err
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	r.logger.Infof("searching spotify for %q", query)
	tracks := r.client.Search(ctx, query)
	if limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}

	return r.printTracks(fmt.Sprintf("Results for %q", query), tracks, cmd)
}

// Track prints a single track looked up by id.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if err := r.requireClient(); err != nil {
		return err
	}
	if err := r.ensureCredential(ctx); err != nil {
		return err
	}

	track, err := r.client.Track(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", track.Name)
	r.writePlain("  Artist: %s\n", track.Artist)
	r.writePlain("  Album:  %s\n", track.Album)
	r.writePlain("  ID:     %s\n", track.ID)
	r.writePlain("  URI:    %s\n", track.URI)
	return nil
}

func (r *Runner) printTracks(title string, tracks []models.Track, cmd *cli.Command) error {
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found.\n")
	}

	r.writePlain("%s (%d):\n\n", title, len(tracks))
	for i, t := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, t.Name, t.Artist)
		r.writePlain("   Album: %s\n", t.Album)
		r.writePlain("   ID:    %s\n", t.ID)
	}
	r.writePlainln("Add a track with: jam draft add <id>")
	return nil
}
