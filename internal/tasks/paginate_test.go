package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/spx/internal/shared"
)

// pagedFetcher serves items from a slice the way an offset-paginated endpoint
// would, recording each page request.
func pagedFetcher(items []int, calls *[]pageCall) PageFetcher[int] {
	return func(ctx context.Context, offset, limit int) ([]int, int, error) {
		*calls = append(*calls, pageCall{offset, limit})
		return slicePage(items, offset, limit), len(items), nil
	}
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsEveryItemInOrder", func(t *testing.T) {
		for _, n := range []int{0, 1, 100, 101, 250} {
			t.Run(fmt.Sprintf("total=%d", n), func(t *testing.T) {
				items := make([]int, n)
				for i := range items {
					items[i] = i
				}

				var calls []pageCall
				got, err := FetchAll(ctx, pagedFetcher(items, &calls), 100)
				if err != nil {
					t.Fatalf("FetchAll failed: %v", err)
				}

				if len(got) != n {
					t.Fatalf("expected %d items, got %d", n, len(got))
				}
				for i, v := range got {
					if v != i {
						t.Fatalf("order broken at index %d: got %d", i, v)
					}
				}

				wantCalls := 1
				if n > 0 {
					wantCalls = (n + 99) / 100
				}
				if len(calls) != wantCalls {
					t.Errorf("expected %d page calls, got %d", wantCalls, len(calls))
				}
				for i, call := range calls {
					if call.offset != i*100 {
						t.Errorf("call %d at offset %d, expected %d", i, call.offset, i*100)
					}
				}
			})
		}
	})

	t.Run("HonorsSmallerPageSize", func(t *testing.T) {
		items := make([]int, 25)
		for i := range items {
			items[i] = i
		}

		var calls []pageCall
		got, err := FetchAll(ctx, pagedFetcher(items, &calls), 10)
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}

		if len(got) != 25 {
			t.Fatalf("expected 25 items, got %d", len(got))
		}
		if len(calls) != 3 {
			t.Errorf("expected 3 page calls, got %d", len(calls))
		}
		if calls[0].limit != 10 {
			t.Errorf("expected limit 10, got %d", calls[0].limit)
		}
	})

	t.Run("ClampsOversizedPageSize", func(t *testing.T) {
		var calls []pageCall
		if _, err := FetchAll(ctx, pagedFetcher(nil, &calls), 1000); err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if calls[0].limit != 100 {
			t.Errorf("expected clamped limit 100, got %d", calls[0].limit)
		}

		calls = nil
		if _, err := FetchAll(ctx, pagedFetcher(nil, &calls), 0); err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if calls[0].limit != 100 {
			t.Errorf("expected default limit 100, got %d", calls[0].limit)
		}
	})

	t.Run("StopsOnShortPage", func(t *testing.T) {
		// The endpoint claims 500 items but runs dry after 150: the short
		// second page is the termination signal.
		items := make([]int, 150)
		for i := range items {
			items[i] = i
		}

		var calls []pageCall
		fetch := func(ctx context.Context, offset, limit int) ([]int, int, error) {
			calls = append(calls, pageCall{offset, limit})
			return slicePage(items, offset, limit), 500, nil
		}

		got, err := FetchAll(ctx, fetch, 100)
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if len(got) != 150 {
			t.Errorf("expected 150 items, got %d", len(got))
		}
		if len(calls) != 2 {
			t.Errorf("expected 2 page calls, got %d", len(calls))
		}
	})

	t.Run("PropagatesPageFailure", func(t *testing.T) {
		boom := errors.New("connection reset")
		fetch := func(ctx context.Context, offset, limit int) ([]int, int, error) {
			if offset >= 100 {
				return nil, 0, boom
			}
			page := make([]int, limit)
			return page, 250, nil
		}

		got, err := FetchAll(ctx, fetch, 100)
		if err == nil {
			t.Fatal("expected an error from the failing page")
		}
		if !errors.Is(err, shared.ErrRemoteFetch) {
			t.Errorf("expected ErrRemoteFetch, got %v", err)
		}
		if got != nil {
			t.Errorf("expected no partial results, got %d items", len(got))
		}
	})
}
