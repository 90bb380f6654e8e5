package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/backup"
	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Import restores a backup file into a brand-new playlist on the authorized
// account. The source playlist is never touched.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	inputFile := cmd.String("input")
	nameOverride := cmd.String("name")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	b, err := backup.Read(inputFile)
	if err != nil {
		return err
	}

	session, account, err := r.spotifySession(ctx, cmd.String("config"), cmd.String("account"))
	if err != nil {
		return err
	}

	r.logger.Info("starting restore", "backup", inputFile, "account", account, "tracks", len(b.Tracks))
	r.writePlain("Restoring %q (%d tracks)...\n\n", b.Playlist.Name, len(b.Tracks))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.AddTracks:
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	restorer := tasks.NewRestorer(session, r.logger)
	result, err := restorer.Restore(ctx, b, nameOverride, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Restore Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	return r.writePlain("%s", formatter.RestoreReport(result))
}
