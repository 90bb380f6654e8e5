package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

// Catalog reads the remote account's playlists and tracks through a
// [services.Session], normalizing raw pages into the domain model.
type Catalog struct {
	session  services.Session
	logger   *log.Logger
	pageSize int
}

// NewCatalog creates a Catalog over the given session.
func NewCatalog(session services.Session, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Catalog{session: session, logger: logger, pageSize: defaultPageSize}
}

// ListPlaylists enumerates every playlist of the account, in the exact order
// the provider returns them.
func (c *Catalog) ListPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.PlaylistSummary, error) {
	sendProgress(progress, fetchPlaylistsUpdate(1, 1))
	return FetchAll(ctx, c.session.ListPlaylistsPage, c.pageSize)
}

// FetchTracks walks the playlist's track pages and returns the kept tracks
// with positions renumbered to a gapless 0..N-1, in flattened page order.
//
// Slots whose underlying track is gone, and records the provider returned
// without a URI, are not kept: each one is logged, reported in the listing's
// Skipped list under its raw index, and announced on progress when a channel
// is provided.
func (c *Catalog) FetchTracks(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.TrackListing, error) {
	fetch := func(ctx context.Context, offset, limit int) ([]*models.TrackRecord, int, error) {
		return c.session.ListTracksPage(ctx, playlistID, offset, limit)
	}

	raw, err := FetchAll(ctx, fetch, c.pageSize)
	if err != nil {
		return nil, err
	}

	listing := &models.TrackListing{}
	for i, item := range raw {
		if item == nil || item.URI == "" {
			skipped := models.SkippedItem{RawIndex: i}
			if item != nil {
				skipped.Name = item.Name
			}
			listing.Skipped = append(listing.Skipped, skipped)
			c.logger.Warn("skipping unavailable track", "playlist", playlistID, "index", i, "name", skipped.Name)
			sendProgress(progress, skippedSlotUpdate(i, len(raw), skipped.Name))
			continue
		}

		record := *item
		record.Position = len(listing.Tracks)
		listing.Tracks = append(listing.Tracks, record)
		sendProgress(progress, fetchTracksUpdate(i+1, len(raw), record.Name))
	}

	return listing, nil
}
