package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

// maxTracksPerAdd is the provider's hard ceiling for one add-tracks call.
const maxTracksPerAdd = 100

// Restorer rebuilds playlists from backups through a [services.Session].
type Restorer struct {
	session services.Session
	logger  *log.Logger
}

// NewRestorer creates a Restorer over the given session.
func NewRestorer(session services.Session, logger *log.Logger) *Restorer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Restorer{session: session, logger: logger}
}

// Restore creates a brand-new remote playlist from the backup and fills it
// with the backup's tracks in position order, at most maxTracksPerAdd per
// call. An existing playlist is never touched.
//
// Creation failure aborts with [shared.ErrRemoteCreate] before any track is
// submitted. After that, failures are tolerated per batch: a failed add call
// records that batch's tracks as skipped with [models.SkipBatchFailed] and
// the restore moves on; tracks the provider reports unavailable inside an
// accepted batch are recorded with [models.SkipTrackUnavailable]. Batches go
// out strictly in increasing position order, so the restored playlist keeps
// the backup's ordering for every track that made it.
func (r *Restorer) Restore(ctx context.Context, backup *models.Backup, nameOverride string, progress chan<- ProgressUpdate) (*models.RestoreResult, error) {
	name := strings.TrimSpace(nameOverride)
	if name == "" {
		name = backup.Playlist.Name
	}

	account, err := r.session.CurrentAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving account: %v", shared.ErrRemoteCreate, err)
	}

	sendProgress(progress, createPlaylistUpdate(name))

	createdID, err := r.session.CreatePlaylist(ctx, account, name, backup.Playlist.Description, backup.Playlist.Public, backup.Playlist.Collaborative)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteCreate, err)
	}

	r.logger.Info("created playlist", "name", name, "id", createdID)

	result := &models.RestoreResult{CreatedPlaylistID: createdID, PlaylistName: name}

	// Stored position order governs submission order. Backups this tool
	// writes already satisfy it; hand-edited files get it enforced here.
	tracks := make([]models.TrackRecord, len(backup.Tracks))
	copy(tracks, backup.Tracks)
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Position < tracks[j].Position })

	batches := (len(tracks) + maxTracksPerAdd - 1) / maxTracksPerAdd

	for start := 0; start < len(tracks); start += maxTracksPerAdd {
		end := min(start+maxTracksPerAdd, len(tracks))
		batch := tracks[start:end]
		batchNo := start/maxTracksPerAdd + 1

		uris := make([]string, len(batch))
		for i, track := range batch {
			uris[i] = track.URI
		}

		sendProgress(progress, addBatchUpdate(batchNo, batches, len(batch)))

		added, unavailable, err := r.session.AddTracks(ctx, createdID, uris)
		if err != nil {
			r.logger.Warn("batch failed, skipping its tracks", "batch", batchNo, "size", len(batch), "err", err)
			sendProgress(progress, batchFailedUpdate(batchNo, batches, err))
			for _, track := range batch {
				result.Skipped = append(result.Skipped, models.SkippedTrack{
					Position: track.Position,
					Name:     track.Name,
					URI:      track.URI,
					Reason:   models.SkipBatchFailed,
				})
			}
			continue
		}

		result.AddedCount += added
		result.Skipped = append(result.Skipped, matchUnavailable(batch, unavailable, r.logger)...)
	}

	result.SkippedCount = len(result.Skipped)
	return result, nil
}

// matchUnavailable maps provider-reported unavailable URIs back to the batch
// tracks they came from. Each report claims the first unclaimed track with
// that URI, so a URI appearing twice in a batch is accounted once per report.
func matchUnavailable(batch []models.TrackRecord, unavailable []models.UnavailableTrack, logger *log.Logger) []models.SkippedTrack {
	if len(unavailable) == 0 {
		return nil
	}

	claimed := make([]bool, len(batch))
	skipped := make([]models.SkippedTrack, 0, len(unavailable))

	for _, u := range unavailable {
		found := false
		for i, track := range batch {
			if claimed[i] || track.URI != u.URI {
				continue
			}
			claimed[i] = true
			found = true
			logger.Warn("track unavailable", "position", track.Position, "name", track.Name, "reason", u.Reason)
			skipped = append(skipped, models.SkippedTrack{
				Position: track.Position,
				Name:     track.Name,
				URI:      track.URI,
				Reason:   models.SkipTrackUnavailable,
			})
			break
		}
		if !found {
			logger.Warn("provider reported unavailable URI not in batch", "uri", u.URI)
		}
	}

	return skipped
}
