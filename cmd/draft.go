package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/jam/internal/formatter"
	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/shared"
	"github.com/urfave/cli/v3"
)

// DraftShow prints the draft.
func (r *Runner) DraftShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	d, err := r.drafts.Get()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(d, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d tracks)", d.Name, d.Len()))
	if d.Len() == 0 {
		r.writePlain("The draft is empty. Find tracks with: jam search <query>\n")
		return nil
	}
	for i, t := range d.Tracks {
		r.writePlain("%d. %s\n", i+1, t)
		r.writePlain("   ID: %s\n", t.ID)
	}
	return nil
}

// DraftName renames the draft.
func (r *Runner) DraftName(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	d, err := r.drafts.Rename(name)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Draft renamed to %q\n", d.Name)
}

// DraftAdd appends a track by id.
//
// The track is taken from the local cache filled by earlier searches, or fetched from Spotify when unknown.
func (r *Runner) DraftAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	track, err := r.resolveTrack(ctx, id)
	if err != nil {
		return err
	}

	added, err := r.drafts.AddTrack(track)
	if err != nil {
		return err
	}
	if !added {
		return r.writePlain("⚠ %s is already in the draft\n", track.Name)
	}
	return r.writePlain("✓ Added %s\n", track)
}

// DraftRemove drops a track by id.
func (r *Runner) DraftRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	removed, err := r.drafts.RemoveTrack(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s is not in the draft", shared.ErrTrackNotFound, id)
	}
	return r.writePlain("✓ Removed %s\n", id)
}

// DraftClear resets the draft after confirmation.
func (r *Runner) DraftClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm("Clear the draft?")
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Draft left unchanged\n")
		}
	}

	if err := r.drafts.Reset(); err != nil {
		return err
	}
	return r.writePlain("✓ Draft reset to %q\n", models.DefaultDraftName)
}

// DraftExport writes the draft as csv, markdown or plain text.
func (r *Runner) DraftExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	d, err := r.drafts.Get()
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(d, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("draft exported", "path", path, "format", format, "tracks", d.Len())
	return r.writePlain("✓ Exported %d tracks to %s\n", d.Len(), path)
}

func (r *Runner) resolveTrack(ctx context.Context, id string) (models.Track, error) {
	if r.tracks != nil {
		track, err := r.tracks.Get(id)
		if err == nil {
			return track, nil
		}
		if !errors.Is(err, shared.ErrTrackNotFound) {
			return models.Track{}, err
		}
		r.logger.Debug("track not cached, fetching", "id", id)
	}

	if err := r.requireClient(); err != nil {
		return models.Track{}, err
	}
	if err := r.ensureCredential(ctx); err != nil {
		return models.Track{}, err
	}

	track, err := r.client.Track(ctx, id)
	if err != nil {
		return models.Track{}, err
	}
	if r.tracks != nil {
		if err := r.tracks.Upsert(track); err != nil {
			r.logger.Warn("failed to cache track", "id", id, "error", err)
		}
	}
	return track, nil
}
