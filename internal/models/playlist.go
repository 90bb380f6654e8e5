package models

// PlaylistSummary is one entry of the account's playlist listing, an immutable
// snapshot of remote state at fetch time.
type PlaylistSummary struct {
	RemoteID      string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	OwnerAccount  string `json:"owner"`
	TotalTracks   int    `json:"total_tracks"`
	SnapshotID    string `json:"snapshot_id"`
}

// TrackRecord is one track of a playlist. Position is the 0-based index in
// flattened page order; within a backup, positions are exactly 0..N-1 with no
// gaps or duplicates. AddedAt and ISRC are nil when the provider reported
// nothing, and marshal as JSON null so the value round-trips.
type TrackRecord struct {
	Position   int      `json:"position"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	URI        string   `json:"uri"`
	AddedAt    *string  `json:"added_at"`
	DurationMs int      `json:"duration_ms"`
	ISRC       *string  `json:"isrc"`
}

// SkippedItem records a raw listing slot whose underlying track was null or
// removed. RawIndex is the position in provider page order, before kept tracks
// are renumbered.
type SkippedItem struct {
	RawIndex int    `json:"raw_index"`
	Name     string `json:"name,omitempty"`
}

// TrackListing is the result of walking a playlist's track pages: the kept
// tracks, renumbered 0..N-1, plus any skipped slots.
type TrackListing struct {
	Tracks  []TrackRecord
	Skipped []SkippedItem
}

// UnavailableTrack is a URI the provider refused inside an otherwise accepted
// add-tracks call.
type UnavailableTrack struct {
	URI    string
	Reason string
}
