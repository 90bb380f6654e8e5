package services

import (
	"context"

	"github.com/desertthunder/spx/internal/models"
)

// Session is the call surface the backup pipeline needs from an authorized
// provider client. Implementations own credentials, token caching, and
// refresh; callers only see ready-to-use listing and write calls.
type Session interface {
	// CurrentAccount returns the provider's ID for the authorized user.
	CurrentAccount(ctx context.Context) (string, error)

	// ListPlaylistsPage fetches one page of the account's playlists in
	// provider order, plus the total number available.
	ListPlaylistsPage(ctx context.Context, offset, limit int) ([]models.PlaylistSummary, int, error)

	// ListTracksPage fetches one page of a playlist's slots, plus the total.
	// A nil entry is a slot whose underlying track is gone (removed or
	// region-locked); callers decide how to handle it.
	ListTracksPage(ctx context.Context, playlistID string, offset, limit int) ([]*models.TrackRecord, int, error)

	// CreatePlaylist creates a new, empty playlist owned by accountID and
	// returns its remote ID.
	CreatePlaylist(ctx context.Context, accountID, name, description string, public, collaborative bool) (string, error)

	// AddTracks appends uris to the playlist in order. URIs the provider
	// refused come back in unavailable; added plus len(unavailable) accounts
	// for every submitted URI. On a non-nil error the call failed and the
	// caller should treat the whole batch as not added.
	AddTracks(ctx context.Context, playlistID string, uris []string) (added int, unavailable []models.UnavailableTrack, err error)
}
