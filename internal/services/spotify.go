package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

// trackURIPrefix is the only URI namespace the add endpoint accepts. Local
// file and episode URIs appear in playlists but cannot be submitted back.
const trackURIPrefix = "spotify:track:"

// SpotifyAPI is the slice of [spotify.Client] the session depends on.
type SpotifyAPI interface {
	CurrentUser(ctx context.Context) (*spotify.PrivateUser, error)
	CurrentUsersPlaylists(ctx context.Context, opts ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotify.FullPlaylist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) (string, error)
}

var _ SpotifyAPI = (*spotify.Client)(nil)

// SpotifySession implements [Session] on top of the Spotify Web API.
//
// Every outgoing call goes through a [rate.Limiter] so sequential page walks
// stay under the API's request budget. The session never retries; a failed
// call is reported to the caller as-is.
type SpotifySession struct {
	client  SpotifyAPI
	limiter *rate.Limiter
	logger  *log.Logger
	account string
}

// NewSpotifySession wraps an authorized API client. rps caps outgoing requests
// per second; zero or negative disables pacing.
func NewSpotifySession(client SpotifyAPI, rps float64, logger *log.Logger) *SpotifySession {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifySession{client: client, limiter: limiter, logger: logger}
}

func (s *SpotifySession) pace(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// CurrentAccount returns the authorized user's Spotify ID. The first call
// hits the profile endpoint; the result is cached for the session's lifetime.
func (s *SpotifySession) CurrentAccount(ctx context.Context) (string, error) {
	if s.account != "" {
		return s.account, nil
	}

	if err := s.pace(ctx); err != nil {
		return "", err
	}
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching profile: %w", err)
	}

	s.account = user.ID
	return s.account, nil
}

// ListPlaylistsPage fetches one page of the account's playlists in the order
// the API returns them.
func (s *SpotifySession) ListPlaylistsPage(ctx context.Context, offset, limit int) ([]models.PlaylistSummary, int, error) {
	if err := s.pace(ctx); err != nil {
		return nil, 0, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]models.PlaylistSummary, len(page.Playlists))
	for i, playlist := range page.Playlists {
		summaries[i] = summaryFromPlaylist(playlist)
	}
	return summaries, int(page.Total), nil
}

// ListTracksPage fetches one page of a playlist's slots. Slots whose track
// object is gone (deleted or region-locked content) come back as nil entries.
func (s *SpotifySession) ListTracksPage(ctx context.Context, playlistID string, offset, limit int) ([]*models.TrackRecord, int, error) {
	if err := s.pace(ctx); err != nil {
		return nil, 0, err
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, 0, err
	}

	records := make([]*models.TrackRecord, len(page.Items))
	for i, item := range page.Items {
		records[i] = recordFromItem(item, offset+i)
	}
	return records, int(page.Total), nil
}

// CreatePlaylist creates a new, empty playlist for accountID and returns its ID.
func (s *SpotifySession) CreatePlaylist(ctx context.Context, accountID, name, description string, public, collaborative bool) (string, error) {
	if err := s.pace(ctx); err != nil {
		return "", err
	}

	playlist, err := s.client.CreatePlaylistForUser(ctx, accountID, name, description, public, collaborative)
	if err != nil {
		return "", err
	}
	return string(playlist.ID), nil
}

type submission struct {
	uri string
	id  spotify.ID
}

// AddTracks appends uris to the playlist in order. URIs outside the track
// namespace are reported unavailable without a request. When the API rejects
// the batch body, the tracks are resubmitted one at a time so a single bad
// URI does not sink its neighbors; each reject becomes an unavailable entry.
func (s *SpotifySession) AddTracks(ctx context.Context, playlistID string, uris []string) (int, []models.UnavailableTrack, error) {
	var subs []submission
	var unavailable []models.UnavailableTrack
	for _, uri := range uris {
		id, ok := strings.CutPrefix(uri, trackURIPrefix)
		if !ok || id == "" {
			s.logger.Warn("uri is not an addable track", "uri", uri)
			unavailable = append(unavailable, models.UnavailableTrack{URI: uri, Reason: "not a track URI"})
			continue
		}
		subs = append(subs, submission{uri: uri, id: spotify.ID(id)})
	}
	if len(subs) == 0 {
		return 0, unavailable, nil
	}

	if err := s.pace(ctx); err != nil {
		return 0, nil, err
	}

	ids := make([]spotify.ID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.id
	}
	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		if !rejectedInput(err) {
			return 0, nil, err
		}
		return s.addIndividually(ctx, playlistID, subs, unavailable)
	}
	return len(subs), unavailable, nil
}

// addIndividually resubmits a rejected batch one track at a time, collecting
// per-URI rejections. Transport and auth failures still abort the whole call.
func (s *SpotifySession) addIndividually(ctx context.Context, playlistID string, subs []submission, unavailable []models.UnavailableTrack) (int, []models.UnavailableTrack, error) {
	added := 0
	for _, sub := range subs {
		if err := s.pace(ctx); err != nil {
			return 0, nil, err
		}

		_, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), sub.id)
		if err == nil {
			added++
			continue
		}
		if !rejectedInput(err) {
			return 0, nil, err
		}

		s.logger.Warn("track rejected by provider", "uri", sub.uri, "error", err)
		unavailable = append(unavailable, models.UnavailableTrack{URI: sub.uri, Reason: err.Error()})
	}
	return added, unavailable, nil
}

// rejectedInput reports whether the API refused the request body itself, as
// opposed to failing on auth, quota, or transport.
func rejectedInput(err error) bool {
	var apiErr spotify.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

func summaryFromPlaylist(playlist spotify.SimplePlaylist) models.PlaylistSummary {
	return models.PlaylistSummary{
		RemoteID:      string(playlist.ID),
		Name:          playlist.Name,
		Description:   playlist.Description,
		Public:        playlist.IsPublic,
		Collaborative: playlist.Collaborative,
		OwnerAccount:  playlist.Owner.ID,
		TotalTracks:   int(playlist.Tracks.Total),
		SnapshotID:    playlist.SnapshotID,
	}
}

// recordFromItem converts one playlist slot. Returns nil when the slot's
// track object is absent, which the API uses for removed content.
func recordFromItem(item spotify.PlaylistItem, position int) *models.TrackRecord {
	track := item.Track.Track
	if track == nil {
		return nil
	}

	artists := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		artists[i] = artist.Name
	}

	record := &models.TrackRecord{
		Position:   position,
		Name:       track.Name,
		Artists:    artists,
		Album:      track.Album.Name,
		URI:        string(track.URI),
		DurationMs: int(track.Duration),
	}
	if item.AddedAt != "" {
		addedAt := item.AddedAt
		record.AddedAt = &addedAt
	}
	if isrc, ok := track.ExternalIDs["isrc"]; ok && isrc != "" {
		record.ISRC = &isrc
	}
	return record
}

var _ Session = (*SpotifySession)(nil)
