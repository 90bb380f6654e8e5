package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// ResolvePlaylistRef turns a user-supplied playlist reference into a remote
// playlist ID. References that already name a playlist pass through: a bare
// base62 ID, a spotify:playlist: URI, or an open.spotify.com link. Anything
// else is read as a 1-based ordinal into listing, the order produced by the
// most recent playlist listing.
//
// A purely numeric reference is always an ordinal, never an ID. Passing an
// ordinal without a listing fails with [shared.ErrAmbiguousReference]; an
// ordinal outside 1..len(listing) fails with [shared.ErrReferenceOutOfRange].
func ResolvePlaylistRef(reference string, listing []models.PlaylistSummary) (string, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return "", fmt.Errorf("%w: empty playlist reference", shared.ErrInvalidArgument)
	}

	if id, ok := extractPlaylistID(ref); ok {
		return id, nil
	}

	if len(listing) == 0 {
		return "", fmt.Errorf("%w: %q is not a playlist ID and no listing is loaded; run the list command first", shared.ErrAmbiguousReference, ref)
	}

	ordinal, err := strconv.Atoi(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q is neither a playlist ID nor a listing number", shared.ErrInvalidArgument, ref)
	}

	if ordinal < 1 || ordinal > len(listing) {
		return "", fmt.Errorf("%w: %d is outside 1..%d", shared.ErrReferenceOutOfRange, ordinal, len(listing))
	}

	return listing[ordinal-1].RemoteID, nil
}

// extractPlaylistID recognizes references that already carry a playlist ID.
// Bare IDs must contain at least one letter; digits alone are reserved for
// listing ordinals. IDs inside a URI or URL namespace are taken as-is.
func extractPlaylistID(ref string) (string, bool) {
	if rest, ok := strings.CutPrefix(ref, "spotify:playlist:"); ok && base62(rest) {
		return rest, true
	}

	for _, prefix := range []string{"https://open.spotify.com/playlist/", "http://open.spotify.com/playlist/"} {
		rest, ok := strings.CutPrefix(ref, prefix)
		if !ok {
			continue
		}
		rest, _, _ = strings.Cut(rest, "?")
		if base62(rest) {
			return rest, true
		}
	}

	if base62(ref) && !allDigits(ref) {
		return ref, true
	}

	return "", false
}

// base62 reports whether s is nonempty and contains only [0-9A-Za-z].
func base62(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isLetter {
			return false
		}
	}
	return true
}

// allDigits reports whether s is nonempty and contains only [0-9].
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
