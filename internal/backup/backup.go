// Package backup implements the on-disk backup format: pure construction,
// crash-safe writes, and validated reads.
//
// A backup file is a UTF-8 JSON object with fixed field names; see
// [models.Backup]. Fields this package never reads are still round-tripped,
// and fields it does not know are ignored, so files from newer versions stay
// loadable.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// New assembles a Backup from a playlist snapshot and its fetched tracks.
// Pure construction; nothing is written. TotalTracks keeps the count the
// listing reported, which can differ from len(tracks) when slots were
// skipped or the playlist changed between listing and fetch.
func New(playlist models.PlaylistSummary, tracks []models.TrackRecord, accountLabel string, now time.Time) *models.Backup {
	return &models.Backup{
		ExportedAt:    shared.UTCTimestamp(now),
		SourceAccount: accountLabel,
		Playlist: models.BackupPlaylist{
			Name:          playlist.Name,
			Description:   playlist.Description,
			Public:        playlist.Public,
			Collaborative: playlist.Collaborative,
			SpotifyID:     playlist.RemoteID,
			SnapshotID:    playlist.SnapshotID,
			TotalTracks:   playlist.TotalTracks,
		},
		Tracks: tracks,
	}
}

// Write serializes the backup as indented JSON at path, overwriting any
// existing file. The bytes land in a temp file in the destination directory
// first and are renamed into place, so an interrupted write can never leave
// a half-written file where a later Read would find it.
func Write(b *models.Backup, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", shared.ErrWriteBackup, path, err)
	}
	data = append(data, '\n')

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), shared.GenerateID()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrWriteBackup, path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", shared.ErrWriteBackup, path, err)
	}

	return nil
}

// rawBackup mirrors models.Backup with pointers on the fields a valid file
// cannot omit, so absence is distinguishable from a zero value.
type rawBackup struct {
	ExportedAt    string       `json:"exported_at"`
	SourceAccount string       `json:"source_account"`
	Playlist      *rawPlaylist `json:"playlist"`
	Tracks        []rawTrack   `json:"tracks"`
}

type rawPlaylist struct {
	Name          *string `json:"name"`
	Description   string  `json:"description"`
	Public        bool    `json:"public"`
	Collaborative bool    `json:"collaborative"`
	SpotifyID     string  `json:"spotify_id"`
	SnapshotID    string  `json:"snapshot_id"`
	TotalTracks   int     `json:"total_tracks"`
}

type rawTrack struct {
	Position   *int     `json:"position"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	URI        *string  `json:"uri"`
	AddedAt    *string  `json:"added_at"`
	DurationMs int      `json:"duration_ms"`
	ISRC       *string  `json:"isrc"`
}

// Read parses and validates a backup file. Files missing playlist.name, a
// track uri, or a track position, or carrying the wrong JSON type anywhere,
// fail with [shared.ErrMalformedBackup] naming the offending field. Extra
// fields are ignored.
func Read(path string) (*models.Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedBackup, path, err)
	}

	var raw rawBackup
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: field %s has type %s", shared.ErrMalformedBackup, path, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedBackup, path, err)
	}

	if raw.Playlist == nil {
		return nil, fmt.Errorf("%w: %s: playlist is missing", shared.ErrMalformedBackup, path)
	}
	if raw.Playlist.Name == nil {
		return nil, fmt.Errorf("%w: %s: playlist.name is missing", shared.ErrMalformedBackup, path)
	}

	b := &models.Backup{
		ExportedAt:    raw.ExportedAt,
		SourceAccount: raw.SourceAccount,
		Playlist: models.BackupPlaylist{
			Name:          *raw.Playlist.Name,
			Description:   raw.Playlist.Description,
			Public:        raw.Playlist.Public,
			Collaborative: raw.Playlist.Collaborative,
			SpotifyID:     raw.Playlist.SpotifyID,
			SnapshotID:    raw.Playlist.SnapshotID,
			TotalTracks:   raw.Playlist.TotalTracks,
		},
	}

	if len(raw.Tracks) > 0 {
		b.Tracks = make([]models.TrackRecord, len(raw.Tracks))
	}
	for i, track := range raw.Tracks {
		if track.URI == nil || *track.URI == "" {
			return nil, fmt.Errorf("%w: %s: tracks[%d].uri is missing", shared.ErrMalformedBackup, path, i)
		}
		if track.Position == nil {
			return nil, fmt.Errorf("%w: %s: tracks[%d].position is missing", shared.ErrMalformedBackup, path, i)
		}
		b.Tracks[i] = models.TrackRecord{
			Position:   *track.Position,
			Name:       track.Name,
			Artists:    track.Artists,
			Album:      track.Album,
			URI:        *track.URI,
			AddedAt:    track.AddedAt,
			DurationMs: track.DurationMs,
			ISRC:       track.ISRC,
		}
	}

	return b, nil
}
