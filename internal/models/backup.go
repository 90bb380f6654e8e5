package models

// Backup is the top-level shape of a backup file. Field names are part of the
// on-disk format and must not change.
type Backup struct {
	ExportedAt    string         `json:"exported_at"`
	SourceAccount string         `json:"source_account"`
	Playlist      BackupPlaylist `json:"playlist"`
	Tracks        []TrackRecord  `json:"tracks"`
}

// BackupPlaylist is the playlist subset embedded in a backup. TotalTracks is
// informational: it records the remote count at listing time and is never
// validated against len(tracks) on import, since the playlist may have been
// edited between listing and fetch.
type BackupPlaylist struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	SpotifyID     string `json:"spotify_id"`
	SnapshotID    string `json:"snapshot_id"`
	TotalTracks   int    `json:"total_tracks"`
}

// SkipReason classifies why a track was left out of a restored playlist.
type SkipReason string

const (
	// SkipBatchFailed marks every track of a batch whose add-tracks call
	// failed outright.
	SkipBatchFailed SkipReason = "batch-failed"
	// SkipTrackUnavailable marks a track the provider reported unavailable
	// inside an otherwise successful batch.
	SkipTrackUnavailable SkipReason = "track-unavailable"
)

// SkippedTrack is one entry of a restore's skip list.
type SkippedTrack struct {
	Position int        `json:"position"`
	Name     string     `json:"name"`
	URI      string     `json:"uri"`
	Reason   SkipReason `json:"reason"`
}

// RestoreResult reports what a restore accomplished. AddedCount plus
// SkippedCount equals the number of tracks in the source backup.
type RestoreResult struct {
	CreatedPlaylistID string         `json:"created_playlist_id"`
	PlaylistName      string         `json:"playlist_name"`
	AddedCount        int            `json:"added"`
	SkippedCount      int            `json:"skipped"`
	Skipped           []SkippedTrack `json:"skipped_tracks,omitempty"`
}
