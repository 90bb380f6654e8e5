package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// backupOf builds a backup holding n tracks with contiguous positions.
func backupOf(n int) *models.Backup {
	tracks := make([]models.TrackRecord, n)
	for i := range tracks {
		tracks[i] = models.TrackRecord{
			Position: i,
			Name:     fmt.Sprintf("Track %d", i),
			Artists:  []string{"Artist"},
			URI:      fmt.Sprintf("spotify:track:t%04d", i),
		}
	}
	return &models.Backup{
		ExportedAt:    "2024-03-09T18:04:05Z",
		SourceAccount: "user123",
		Playlist: models.BackupPlaylist{
			Name:        "Road Trip",
			Description: "Summer drive",
			Public:      true,
			SpotifyID:   "plSource",
			TotalTracks: n,
		},
		Tracks: tracks,
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("SubmitsBatchesOfAtMost100InOrder", func(t *testing.T) {
		session := &fakeSession{createdID: "plNew"}

		result, err := NewRestorer(session, nil).Restore(ctx, backupOf(250), "", nil)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}

		if len(session.addCalls) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(session.addCalls))
		}
		for i, want := range []int{100, 100, 50} {
			if len(session.addCalls[i]) != want {
				t.Errorf("batch %d has %d URIs, expected %d", i+1, len(session.addCalls[i]), want)
			}
		}

		if session.addCalls[0][0] != "spotify:track:t0000" {
			t.Errorf("batch 1 starts at %s", session.addCalls[0][0])
		}
		if session.addCalls[1][0] != "spotify:track:t0100" {
			t.Errorf("batch 2 starts at %s", session.addCalls[1][0])
		}
		if session.addCalls[2][49] != "spotify:track:t0249" {
			t.Errorf("batch 3 ends at %s", session.addCalls[2][49])
		}

		if result.CreatedPlaylistID != "plNew" {
			t.Errorf("expected created playlist plNew, got %s", result.CreatedPlaylistID)
		}
		if result.AddedCount != 250 || result.SkippedCount != 0 {
			t.Errorf("expected 250 added, 0 skipped; got %d/%d", result.AddedCount, result.SkippedCount)
		}
	})

	t.Run("FailedMiddleBatchSkipsOnlyItsTracks", func(t *testing.T) {
		session := &fakeSession{
			addErrOn: map[int]error{2: errors.New("502 bad gateway")},
		}

		result, err := NewRestorer(session, nil).Restore(ctx, backupOf(250), "", nil)
		if err != nil {
			t.Fatalf("Restore should tolerate a failed batch: %v", err)
		}

		if len(session.addCalls) != 3 {
			t.Fatalf("batches 1 and 3 must still be submitted, got %d calls", len(session.addCalls))
		}

		if result.AddedCount != 150 {
			t.Errorf("expected 150 added, got %d", result.AddedCount)
		}
		if result.SkippedCount != 100 {
			t.Fatalf("expected 100 skipped, got %d", result.SkippedCount)
		}

		for i, skip := range result.Skipped {
			if skip.Reason != models.SkipBatchFailed {
				t.Fatalf("skip %d has reason %s, expected %s", i, skip.Reason, models.SkipBatchFailed)
			}
			if skip.Position != 100+i {
				t.Errorf("skip %d has position %d, expected %d", i, skip.Position, 100+i)
			}
		}
	})

	t.Run("UnavailableTracksAreSkippedIndividually", func(t *testing.T) {
		session := &fakeSession{
			unavailableOn: map[int][]models.UnavailableTrack{
				1: {{URI: "spotify:track:t0001", Reason: "not available in market"}},
			},
		}

		result, err := NewRestorer(session, nil).Restore(ctx, backupOf(3), "", nil)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}

		if result.AddedCount != 2 {
			t.Errorf("expected 2 added, got %d", result.AddedCount)
		}
		if result.SkippedCount != 1 {
			t.Fatalf("expected 1 skipped, got %d", result.SkippedCount)
		}

		skip := result.Skipped[0]
		if skip.Reason != models.SkipTrackUnavailable {
			t.Errorf("expected reason %s, got %s", models.SkipTrackUnavailable, skip.Reason)
		}
		if skip.Position != 1 || skip.Name != "Track 1" {
			t.Errorf("unexpected skip identity: position %d, name %s", skip.Position, skip.Name)
		}
	})

	t.Run("CreateFailureAbortsBeforeAnyAdd", func(t *testing.T) {
		session := &fakeSession{createErr: errors.New("forbidden")}

		result, err := NewRestorer(session, nil).Restore(ctx, backupOf(5), "", nil)
		if !errors.Is(err, shared.ErrRemoteCreate) {
			t.Errorf("expected ErrRemoteCreate, got %v", err)
		}
		if result != nil {
			t.Error("expected no result when creation fails")
		}
		if len(session.addCalls) != 0 {
			t.Errorf("no tracks may be added to a half-created playlist, saw %d calls", len(session.addCalls))
		}
	})

	t.Run("AccountLookupFailureAborts", func(t *testing.T) {
		session := &fakeSession{accountErr: errors.New("token revoked")}

		if _, err := NewRestorer(session, nil).Restore(ctx, backupOf(1), "", nil); !errors.Is(err, shared.ErrRemoteCreate) {
			t.Errorf("expected ErrRemoteCreate, got %v", err)
		}
		if len(session.createCalls) != 0 {
			t.Error("creation must not be attempted without an account")
		}
	})

	t.Run("NameOverride", func(t *testing.T) {
		session := &fakeSession{}

		if _, err := NewRestorer(session, nil).Restore(ctx, backupOf(1), "Rebuilt", nil); err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if session.createCalls[0].name != "Rebuilt" {
			t.Errorf("expected override name Rebuilt, got %s", session.createCalls[0].name)
		}

		session = &fakeSession{}
		if _, err := NewRestorer(session, nil).Restore(ctx, backupOf(1), "   ", nil); err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if session.createCalls[0].name != "Road Trip" {
			t.Errorf("blank override should fall back to the backup name, got %s", session.createCalls[0].name)
		}
	})

	t.Run("CarriesBackupFlagsToCreation", func(t *testing.T) {
		session := &fakeSession{}

		if _, err := NewRestorer(session, nil).Restore(ctx, backupOf(1), "", nil); err != nil {
			t.Fatalf("Restore failed: %v", err)
		}

		call := session.createCalls[0]
		if call.account != "user123" {
			t.Errorf("expected account user123, got %s", call.account)
		}
		if call.description != "Summer drive" || !call.public || call.collaborative {
			t.Errorf("backup flags not carried: %+v", call)
		}
	})

	t.Run("SubmitsByStoredPositionOrder", func(t *testing.T) {
		b := backupOf(3)
		b.Tracks[0], b.Tracks[2] = b.Tracks[2], b.Tracks[0] // hand-edited file, array out of order

		session := &fakeSession{}
		if _, err := NewRestorer(session, nil).Restore(ctx, b, "", nil); err != nil {
			t.Fatalf("Restore failed: %v", err)
		}

		want := []string{"spotify:track:t0000", "spotify:track:t0001", "spotify:track:t0002"}
		for i, uri := range want {
			if session.addCalls[0][i] != uri {
				t.Errorf("slot %d: expected %s, got %s", i, uri, session.addCalls[0][i])
			}
		}
	})

	t.Run("EmptyBackupCreatesEmptyPlaylist", func(t *testing.T) {
		session := &fakeSession{}

		result, err := NewRestorer(session, nil).Restore(ctx, backupOf(0), "", nil)
		if err != nil {
			t.Fatalf("Restore failed: %v", err)
		}
		if len(session.addCalls) != 0 {
			t.Errorf("no add calls expected for an empty backup, got %d", len(session.addCalls))
		}
		if result.AddedCount != 0 || result.SkippedCount != 0 {
			t.Errorf("expected empty result counts, got %d/%d", result.AddedCount, result.SkippedCount)
		}
	})
}
