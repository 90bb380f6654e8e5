package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/backup"
	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/desertthunder/spx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Export fetches a playlist and writes it to a backup file. The playlist
// comes from --playlist-id when given, otherwise from an interactive picker
// over the account's listing.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.String("playlist-id")
	outputFile := cmd.String("output")
	format := cmd.String("format")
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	switch format {
	case "json", "csv", "markdown", "text":
	default:
		return fmt.Errorf("%w: unknown format %q (expected json, csv, markdown, or text)", shared.ErrInvalidArgument, format)
	}

	session, account, err := r.spotifySession(ctx, cmd.String("config"), cmd.String("account"))
	if err != nil {
		return err
	}
	config := r.loadConfig(cmd.String("config"))

	if cmd.Bool("all") {
		if format != "json" {
			return fmt.Errorf("%w: --all writes JSON backups only", shared.ErrInvalidArgument)
		}
		return r.exportAll(ctx, session, account, outputFile)
	}

	if ref == "" {
		// Redirect logs to file to avoid interfering with TUI rendering
		fileLogger, err := shared.NewFileLogger("./tmp/spx-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	catalog := tasks.NewCatalog(session, r.logger)

	summary, err := r.pickPlaylist(ctx, catalog, ref)
	if err != nil {
		return err
	}
	if summary == nil {
		return r.writePlain("No playlist selected.\n")
	}

	r.logger.Infof("exporting playlist %v (%v)", summary.Name, summary.RemoteID)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	listing, err := catalog.FetchTracks(ctx, summary.RemoteID, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	b := backup.New(*summary, listing.Tracks, account, time.Now())

	path, err := r.writeBackup(b, format, outputFile, config)
	if err != nil {
		return err
	}

	r.writePlain("\n✓ Playlist exported to %s\n", path)
	r.writePlain("  Playlist: %s\n", b.Playlist.Name)
	r.writePlain("  Tracks: %d\n", len(b.Tracks))
	if len(listing.Skipped) > 0 {
		r.writePlain("  ⚠ Skipped %d unavailable items\n", len(listing.Skipped))
	}

	return nil
}

// exportAll backs up the entire library, one file per playlist.
func (r *Runner) exportAll(ctx context.Context, session services.Session, account, outputDir string) error {
	catalog := tasks.NewCatalog(session, r.logger)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Phase == tasks.WriteBackup {
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	result, err := catalog.ExportAll(ctx, tasks.BulkExportOpts{Directory: outputDir, Account: account}, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d of %d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("⚠ %d playlists failed:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s (%s): %s\n", res.PlaylistName, res.PlaylistID, res.Error)
			}
		}
	}
	return nil
}

// pickPlaylist resolves which playlist to export: an explicit reference when
// given, otherwise an interactive picker. A nil summary with a nil error
// means the picker was dismissed without a selection.
func (r *Runner) pickPlaylist(ctx context.Context, catalog *tasks.Catalog, ref string) (*models.PlaylistSummary, error) {
	if ref == "" {
		return ui.Pick(ctx, catalog)
	}

	listing, err := catalog.ListPlaylists(ctx, nil)
	if err != nil {
		return nil, err
	}

	id, err := tasks.ResolvePlaylistRef(ref, listing)
	if err != nil {
		return nil, err
	}

	for i := range listing {
		if listing[i].RemoteID == id {
			return &listing[i], nil
		}
	}
	return nil, fmt.Errorf("%w: playlist %s is not in your library", shared.ErrInvalidArgument, id)
}

// writeBackup serializes the backup in the requested format and returns the
// path written. An empty outputFile lands in the configured export directory
// under a name derived from the playlist.
func (r *Runner) writeBackup(b *models.Backup, format, outputFile string, config *shared.Config) (string, error) {
	path := outputFile
	if path == "" {
		base := shared.SanitizeFilename(b.Playlist.Name)
		switch format {
		case "json":
			path = filepath.Join(config.Export.Directory, base+".json")
		case "csv":
			path = filepath.Join(config.Export.Directory, base+"_tracks.csv")
		case "markdown":
			path = filepath.Join(config.Export.Directory, base+".md")
		case "text":
			path = filepath.Join(config.Export.Directory, base+"_tracks.txt")
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case "csv":
		return formatter.WriteCSV(b, path)
	case "markdown":
		return formatter.WriteMarkdown(b, path)
	case "text":
		return formatter.WriteText(b, path)
	default:
		return path, backup.Write(b, path)
	}
}
