package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeAPI implements [SpotifyAPI] with canned responses.
type fakeAPI struct {
	user      *spotify.PrivateUser
	userErr   error
	userCalls int

	playlistPage *spotify.SimplePlaylistPage
	playlistErr  error

	itemPage *spotify.PlaylistItemPage
	itemsErr error

	created    *spotify.FullPlaylist
	createErr  error
	createArgs []any

	addCalls [][]spotify.ID
	addErrOn map[int]error // 1-based call number -> error
}

var _ SpotifyAPI = (*fakeAPI)(nil)

func (f *fakeAPI) CurrentUser(ctx context.Context) (*spotify.PrivateUser, error) {
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return &spotify.PrivateUser{User: spotify.User{ID: "user123"}}, nil
	}
	return f.user, nil
}

func (f *fakeAPI) CurrentUsersPlaylists(ctx context.Context, opts ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error) {
	if f.playlistErr != nil {
		return nil, f.playlistErr
	}
	return f.playlistPage, nil
}

func (f *fakeAPI) GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.itemPage, nil
}

func (f *fakeAPI) CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotify.FullPlaylist, error) {
	f.createArgs = []any{userID, playlistName, description, public, collaborative}
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created == nil {
		return &spotify.FullPlaylist{SimplePlaylist: spotify.SimplePlaylist{ID: "created123"}}, nil
	}
	return f.created, nil
}

func (f *fakeAPI) AddTracksToPlaylist(ctx context.Context, playlistID spotify.ID, trackIDs ...spotify.ID) (string, error) {
	f.addCalls = append(f.addCalls, trackIDs)
	if err, ok := f.addErrOn[len(f.addCalls)]; ok {
		return "", err
	}
	return "snapshot1", nil
}

func newTestSession(api *fakeAPI) *SpotifySession {
	return NewSpotifySession(api, 0, discardLogger())
}

func fullTrack(name, uri string) *spotify.FullTrack {
	return &spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			Name:     name,
			URI:      spotify.URI(uri),
			Artists:  []spotify.SimpleArtist{{Name: "Artist A"}, {Name: "Artist B"}},
			Duration: 201000,
		},
		Album:       spotify.SimpleAlbum{Name: "Album One"},
		ExternalIDs: map[string]string{"isrc": "USUM71703861"},
	}
}

func TestCurrentAccount(t *testing.T) {
	t.Run("CachesProfileLookup", func(t *testing.T) {
		api := &fakeAPI{}
		session := newTestSession(api)

		for i := 0; i < 2; i++ {
			account, err := session.CurrentAccount(context.Background())
			if err != nil {
				t.Fatalf("CurrentAccount failed: %v", err)
			}
			if account != "user123" {
				t.Errorf("expected user123, got %s", account)
			}
		}

		if api.userCalls != 1 {
			t.Errorf("expected a single profile call, got %d", api.userCalls)
		}
	})

	t.Run("PropagatesProfileFailure", func(t *testing.T) {
		api := &fakeAPI{userErr: errors.New("401 unauthorized")}
		session := newTestSession(api)

		if _, err := session.CurrentAccount(context.Background()); err == nil {
			t.Error("expected an error from a failed profile call")
		}
	})
}

func TestListPlaylistsPage(t *testing.T) {
	api := &fakeAPI{
		playlistPage: &spotify.SimplePlaylistPage{
			Playlists: []spotify.SimplePlaylist{
				{
					ID:            "pl1",
					Name:          "Road Trip",
					Description:   "Summer drive",
					IsPublic:      true,
					Collaborative: false,
					Owner:         spotify.User{ID: "user123"},
					Tracks:        spotify.PlaylistTracks{Total: 42},
					SnapshotID:    "snap42",
				},
			},
		},
	}
	api.playlistPage.Total = 7
	session := newTestSession(api)

	summaries, total, err := session.ListPlaylistsPage(context.Background(), 0, 50)
	if err != nil {
		t.Fatalf("ListPlaylistsPage failed: %v", err)
	}

	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}

	got := summaries[0]
	if got.RemoteID != "pl1" || got.Name != "Road Trip" || got.Description != "Summer drive" {
		t.Errorf("identity fields not carried: %+v", got)
	}
	if !got.Public || got.Collaborative {
		t.Errorf("visibility flags not carried: %+v", got)
	}
	if got.OwnerAccount != "user123" || got.TotalTracks != 42 || got.SnapshotID != "snap42" {
		t.Errorf("listing metadata not carried: %+v", got)
	}
}

func TestListTracksPage(t *testing.T) {
	t.Run("ConvertsTracksAndKeepsGoneSlotsNil", func(t *testing.T) {
		api := &fakeAPI{
			itemPage: &spotify.PlaylistItemPage{
				Items: []spotify.PlaylistItem{
					{AddedAt: "2023-11-02T09:30:00Z", Track: spotify.PlaylistItemTrack{Track: fullTrack("First Song", "spotify:track:t0")}},
					{Track: spotify.PlaylistItemTrack{Track: nil}},
					{Track: spotify.PlaylistItemTrack{Track: fullTrack("Third Song", "spotify:track:t2")}},
				},
			},
		}
		api.itemPage.Total = 103
		session := newTestSession(api)

		records, total, err := session.ListTracksPage(context.Background(), "pl1", 100, 100)
		if err != nil {
			t.Fatalf("ListTracksPage failed: %v", err)
		}

		if total != 103 {
			t.Errorf("expected total 103, got %d", total)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 slots, got %d", len(records))
		}
		if records[1] != nil {
			t.Error("gone slot should be nil")
		}

		first := records[0]
		if first == nil {
			t.Fatal("expected a record in slot 0")
		}
		if first.Position != 100 {
			t.Errorf("raw position should include page offset, got %d", first.Position)
		}
		if first.Name != "First Song" || first.URI != "spotify:track:t0" || first.Album != "Album One" {
			t.Errorf("track fields not carried: %+v", first)
		}
		if len(first.Artists) != 2 || first.Artists[0] != "Artist A" {
			t.Errorf("artists not carried: %v", first.Artists)
		}
		if first.DurationMs != 201000 {
			t.Errorf("duration not carried: %d", first.DurationMs)
		}
		if first.AddedAt == nil || *first.AddedAt != "2023-11-02T09:30:00Z" {
			t.Errorf("added_at not carried: %v", first.AddedAt)
		}
		if first.ISRC == nil || *first.ISRC != "USUM71703861" {
			t.Errorf("isrc not carried: %v", first.ISRC)
		}

		third := records[2]
		if third == nil || third.Position != 102 {
			t.Errorf("slot 2 should keep raw position 102: %+v", third)
		}
		if third.AddedAt != nil {
			t.Error("missing added_at should stay nil")
		}
	})

	t.Run("OmitsBlankISRC", func(t *testing.T) {
		track := fullTrack("No Code", "spotify:track:t9")
		track.ExternalIDs = map[string]string{}
		api := &fakeAPI{itemPage: &spotify.PlaylistItemPage{Items: []spotify.PlaylistItem{
			{Track: spotify.PlaylistItemTrack{Track: track}},
		}}}
		session := newTestSession(api)

		records, _, err := session.ListTracksPage(context.Background(), "pl1", 0, 100)
		if err != nil {
			t.Fatalf("ListTracksPage failed: %v", err)
		}
		if records[0].ISRC != nil {
			t.Errorf("expected nil ISRC, got %v", *records[0].ISRC)
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	api := &fakeAPI{}
	session := newTestSession(api)

	id, err := session.CreatePlaylist(context.Background(), "user123", "Road Trip", "Summer drive", true, false)
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if id != "created123" {
		t.Errorf("expected created123, got %s", id)
	}

	want := []any{"user123", "Road Trip", "Summer drive", true, false}
	for i, arg := range want {
		if api.createArgs[i] != arg {
			t.Errorf("create arg %d: expected %v, got %v", i, arg, api.createArgs[i])
		}
	}
}

func TestAddTracks(t *testing.T) {
	uris := []string{"spotify:track:t0", "spotify:track:t1", "spotify:track:t2"}

	t.Run("SubmitsWholeBatchOnce", func(t *testing.T) {
		api := &fakeAPI{}
		session := newTestSession(api)

		added, unavailable, err := session.AddTracks(context.Background(), "pl1", uris)
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}
		if added != 3 || len(unavailable) != 0 {
			t.Errorf("expected 3 added and none unavailable, got %d/%d", added, len(unavailable))
		}
		if len(api.addCalls) != 1 || len(api.addCalls[0]) != 3 {
			t.Errorf("expected one batched call, got %v", api.addCalls)
		}
		if api.addCalls[0][0] != "t0" || api.addCalls[0][2] != "t2" {
			t.Errorf("URIs not reduced to IDs in order: %v", api.addCalls[0])
		}
	})

	t.Run("RefusesNonTrackURIsUpFront", func(t *testing.T) {
		api := &fakeAPI{}
		session := newTestSession(api)

		added, unavailable, err := session.AddTracks(context.Background(), "pl1", []string{
			"spotify:track:t0",
			"spotify:local:Ripped+Vinyl",
			"spotify:track:t2",
		})
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}
		if len(unavailable) != 1 || unavailable[0].URI != "spotify:local:Ripped+Vinyl" {
			t.Errorf("local file should be unavailable: %v", unavailable)
		}
		if len(api.addCalls) != 1 || len(api.addCalls[0]) != 2 {
			t.Errorf("only track URIs should reach the API: %v", api.addCalls)
		}
	})

	t.Run("FallsBackToSingleAddsOnRejectedBatch", func(t *testing.T) {
		api := &fakeAPI{addErrOn: map[int]error{
			1: spotify.Error{Status: http.StatusBadRequest, Message: "Invalid track uri"},
			3: spotify.Error{Status: http.StatusBadRequest, Message: "Invalid track uri"},
		}}
		session := newTestSession(api)

		added, unavailable, err := session.AddTracks(context.Background(), "pl1", uris)
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}

		// One batch call plus one call per track.
		if len(api.addCalls) != 4 {
			t.Fatalf("expected 4 calls, got %d", len(api.addCalls))
		}
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}
		if len(unavailable) != 1 || unavailable[0].URI != "spotify:track:t1" {
			t.Errorf("rejected track should be reported: %v", unavailable)
		}
	})

	t.Run("PropagatesTransportFailure", func(t *testing.T) {
		api := &fakeAPI{addErrOn: map[int]error{
			1: spotify.Error{Status: http.StatusTooManyRequests, Message: "rate limited"},
		}}
		session := newTestSession(api)

		added, unavailable, err := session.AddTracks(context.Background(), "pl1", uris)
		if err == nil {
			t.Fatal("expected a non-400 failure to propagate")
		}
		if added != 0 || unavailable != nil {
			t.Errorf("failed call should report nothing added, got %d/%v", added, unavailable)
		}
		if len(api.addCalls) != 1 {
			t.Errorf("no fallback expected for transport errors, got %d calls", len(api.addCalls))
		}
	})

	t.Run("EmptyAfterFilteringSkipsTheAPI", func(t *testing.T) {
		api := &fakeAPI{}
		session := newTestSession(api)

		added, unavailable, err := session.AddTracks(context.Background(), "pl1", []string{"spotify:local:Only+Local"})
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}
		if added != 0 || len(unavailable) != 1 {
			t.Errorf("expected 0 added and 1 unavailable, got %d/%d", added, len(unavailable))
		}
		if len(api.addCalls) != 0 {
			t.Errorf("no API call expected, got %v", api.addCalls)
		}
	})
}

func TestRejectedInput(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"BadRequest", spotify.Error{Status: http.StatusBadRequest, Message: "bad uri"}, true},
		{"WrappedBadRequest", fmt.Errorf("adding: %w", spotify.Error{Status: http.StatusBadRequest}), true},
		{"RateLimited", spotify.Error{Status: http.StatusTooManyRequests}, false},
		{"PlainError", errors.New("connection reset"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rejectedInput(tc.err); got != tc.want {
				t.Errorf("rejectedInput(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
