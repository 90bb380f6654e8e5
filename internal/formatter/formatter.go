// package formatter renders playlist listings, backups, and restore results
// for humans (plain text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// BackupToCSV converts a backup's track list to CSV format with columns:
// Position, Title, Artists, Album, Duration, URI, ISRC
func BackupToCSV(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artists", "Album", "Duration", "URI", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range backup.Tracks {
		record := []string{
			strconv.Itoa(track.Position),
			track.Name,
			strings.Join(track.Artists, "; "),
			track.Album,
			strconv.Itoa(track.DurationMs),
			track.URI,
			stringValue(track.ISRC),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// BackupToMarkdown converts a backup to Markdown format
func BackupToMarkdown(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", backup.Playlist.Name))

	if backup.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", backup.Playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(backup.Tracks)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n", shared.VisibilityString(backup.Playlist.Public)))
	buf.WriteString(fmt.Sprintf("**Exported**: %s\n\n", backup.ExportedAt))

	buf.WriteString("## Tracks\n\n")
	for _, track := range backup.Tracks {
		duration := shared.FormatDuration(track.DurationMs)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", track.Position+1, artistLine(track.Artists), track.Name, albumPart, duration))
	}

	return buf.Bytes(), nil
}

// BackupToText converts a backup to plain text format
func BackupToText(backup *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", backup.Playlist.Name))
	if backup.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", backup.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Exported: %s\n", backup.ExportedAt))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(backup.Tracks)))

	for _, track := range backup.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", track.Position+1, artistLine(track.Artists), track.Name))
	}

	return buf.Bytes(), nil
}

// PlaylistListing renders the numbered playlist listing shown by the list
// command. Ordinals are 1-based and match what the export command accepts as
// a playlist reference.
func PlaylistListing(playlists []models.PlaylistSummary) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Found %d playlists:\n\n", len(playlists)))
	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Name))
		if p.Description != "" {
			buf.WriteString(fmt.Sprintf("   Description: %s\n", p.Description))
		}
		buf.WriteString(fmt.Sprintf("   ID: %s\n", p.RemoteID))
		buf.WriteString(fmt.Sprintf("   Tracks: %d\n", p.TotalTracks))
		buf.WriteString(fmt.Sprintf("   Visibility: %s\n", shared.VisibilityString(p.Public)))
	}

	return buf.String()
}

// RestoreReport renders the outcome of an import: the created playlist, the
// added and skipped counts, and one line per skipped track with its reason.
func RestoreReport(result *models.RestoreResult) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Created playlist %q (%s)\n", result.PlaylistName, result.CreatedPlaylistID))
	buf.WriteString(fmt.Sprintf("Added: %d\n", result.AddedCount))
	buf.WriteString(fmt.Sprintf("Skipped: %d\n", result.SkippedCount))

	if len(result.Skipped) > 0 {
		buf.WriteString("\nSkipped tracks:\n")
		for _, skip := range result.Skipped {
			buf.WriteString(fmt.Sprintf("  %d. %s (%s): %s\n", skip.Position+1, skip.Name, skip.URI, skip.Reason))
		}
	}

	return buf.String()
}

// WriteCSV renders the backup as CSV and writes it to path.
//
// Defaults to {sanitized-name}_tracks.csv when path is empty.
func WriteCSV(backup *models.Backup, path string) (string, error) {
	if path == "" {
		path = shared.SanitizeFilename(backup.Playlist.Name) + "_tracks.csv"
	}

	data, err := BackupToCSV(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteMarkdown renders the backup as Markdown and writes it to path.
//
// Defaults to {sanitized-name}.md when path is empty.
func WriteMarkdown(backup *models.Backup, path string) (string, error) {
	if path == "" {
		path = shared.SanitizeFilename(backup.Playlist.Name) + ".md"
	}

	data, err := BackupToMarkdown(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return path, nil
}

// WriteText renders the backup as plain text and writes it to path.
//
// Defaults to {sanitized-name}_tracks.txt when path is empty.
func WriteText(backup *models.Backup, path string) (string, error) {
	if path == "" {
		path = shared.SanitizeFilename(backup.Playlist.Name) + "_tracks.txt"
	}

	data, err := BackupToText(backup)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// artistLine joins artist names for display.
func artistLine(artists []string) string {
	if len(artists) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(artists, ", ")
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
