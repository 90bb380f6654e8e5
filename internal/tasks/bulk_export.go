package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spx/internal/backup"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// BulkExportOpts configures an export of the account's whole library.
type BulkExportOpts struct {
	Directory string // destination directory (default: spotify_export_{epoch})
	Account   string // account label recorded in each backup
}

// PlaylistExportResult records the outcome for one playlist of a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name"`
	Path         string `json:"path,omitempty"`
	Tracks       int    `json:"tracks"`
	Skipped      int    `json:"skipped"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"manifest_path,omitempty"`
	Results           []PlaylistExportResult `json:"results"`
}

// ExportAll backs up every playlist of the account into its own file under
// opts.Directory, one playlist at a time in listing order. A playlist that
// fails to fetch or write is recorded in the result and the run continues;
// only an unreadable listing aborts the whole run. A manifest summarizing
// the run lands next to the backups.
func (c *Catalog) ExportAll(ctx context.Context, opts BulkExportOpts, progress chan<- ProgressUpdate) (*BulkExportResult, error) {
	playlists, err := c.ListPlaylists(ctx, progress)
	if err != nil {
		return nil, err
	}

	if opts.Directory == "" {
		opts.Directory = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(opts.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(playlists),
		OutputDirectory: opts.Directory,
		Results:         make([]PlaylistExportResult, 0, len(playlists)),
	}

	for i, summary := range playlists {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sendProgress(progress, writeBackupUpdate(i+1, len(playlists), summary.Name))

		res := c.exportOne(ctx, summary, opts)
		if res.Success {
			result.SuccessfulExports++
		} else {
			result.FailedExports++
			c.logger.Warn("playlist export failed", "playlist", summary.Name, "error", res.Error)
		}
		result.Results = append(result.Results, res)
	}

	manifestPath := filepath.Join(opts.Directory, "export_manifest.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %v", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportOne fetches one playlist's tracks and writes its backup file, named
// by sanitized playlist name plus remote ID so same-named playlists never
// collide.
func (c *Catalog) exportOne(ctx context.Context, summary models.PlaylistSummary, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   summary.RemoteID,
		PlaylistName: summary.Name,
	}

	listing, err := c.FetchTracks(ctx, summary.RemoteID, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	path := filepath.Join(opts.Directory, fmt.Sprintf("%s_%s.json", shared.SanitizeFilename(summary.Name), summary.RemoteID))
	b := backup.New(summary, listing.Tracks, opts.Account, time.Now())
	if err := backup.Write(b, path); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Path = path
	result.Tracks = len(listing.Tracks)
	result.Skipped = len(listing.Skipped)
	result.Success = true
	return result
}
