package tasks

import (
	"context"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
)

// fakeSession is a configurable in-memory Session for pipeline tests. It
// serves pages out of plain slices and records every write call it receives.
type fakeSession struct {
	account    string
	accountErr error

	playlists     []models.PlaylistSummary
	playlistsErr  error
	playlistPages []pageCall

	trackItems  map[string][]*models.TrackRecord
	tracksErr   error
	tracksErrOn map[string]error // playlist ID -> error
	trackPages  []pageCall

	createdID   string
	createErr   error
	createCalls []createCall

	addCalls      [][]string
	addErrOn      map[int]error                     // 1-based add call index -> error
	unavailableOn map[int][]models.UnavailableTrack // 1-based add call index -> report
}

type pageCall struct {
	offset int
	limit  int
}

type createCall struct {
	account       string
	name          string
	description   string
	public        bool
	collaborative bool
}

var _ services.Session = (*fakeSession)(nil)

func (f *fakeSession) CurrentAccount(ctx context.Context) (string, error) {
	if f.accountErr != nil {
		return "", f.accountErr
	}
	if f.account == "" {
		return "user123", nil
	}
	return f.account, nil
}

func (f *fakeSession) ListPlaylistsPage(ctx context.Context, offset, limit int) ([]models.PlaylistSummary, int, error) {
	f.playlistPages = append(f.playlistPages, pageCall{offset, limit})
	if f.playlistsErr != nil {
		return nil, 0, f.playlistsErr
	}
	return slicePage(f.playlists, offset, limit), len(f.playlists), nil
}

func (f *fakeSession) ListTracksPage(ctx context.Context, playlistID string, offset, limit int) ([]*models.TrackRecord, int, error) {
	f.trackPages = append(f.trackPages, pageCall{offset, limit})
	if f.tracksErr != nil {
		return nil, 0, f.tracksErr
	}
	if err := f.tracksErrOn[playlistID]; err != nil {
		return nil, 0, err
	}
	items := f.trackItems[playlistID]
	return slicePage(items, offset, limit), len(items), nil
}

func (f *fakeSession) CreatePlaylist(ctx context.Context, accountID, name, description string, public, collaborative bool) (string, error) {
	f.createCalls = append(f.createCalls, createCall{accountID, name, description, public, collaborative})
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.createdID == "" {
		return "created123", nil
	}
	return f.createdID, nil
}

func (f *fakeSession) AddTracks(ctx context.Context, playlistID string, uris []string) (int, []models.UnavailableTrack, error) {
	f.addCalls = append(f.addCalls, append([]string(nil), uris...))
	call := len(f.addCalls)
	if err := f.addErrOn[call]; err != nil {
		return 0, nil, err
	}
	unavailable := f.unavailableOn[call]
	return len(uris) - len(unavailable), unavailable, nil
}

func slicePage[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func trackItem(name, uri string) *models.TrackRecord {
	return &models.TrackRecord{
		Name:       name,
		Artists:    []string{"Artist"},
		Album:      "Album",
		URI:        uri,
		DurationMs: 180000,
	}
}
