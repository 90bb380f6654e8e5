package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spx/internal/shared"
)

// defaultPageSize is the provider's per-call ceiling for listing endpoints.
const defaultPageSize = 100

// PageFetcher returns one page of items starting at offset, plus the total
// number of items the remote side reports available.
type PageFetcher[T any] func(ctx context.Context, offset, limit int) (items []T, total int, err error)

// FetchAll walks a paginated listing endpoint and returns the concatenation
// of every page, preserving page-internal and cross-page order. Offsets
// advance in steps of pageSize until the cumulative count reaches the
// reported total, or a page comes back short of pageSize.
//
// Each invocation is independent; there is no cursor state between calls.
// A failed page request aborts the walk with [shared.ErrRemoteFetch] and no
// items: callers get the complete sequence or an error, never a partial one.
// There is no automatic retry.
func FetchAll[T any](ctx context.Context, fetch PageFetcher[T], pageSize int) ([]T, error) {
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}

	var all []T
	for offset := 0; ; offset += pageSize {
		items, total, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: page at offset %d: %v", shared.ErrRemoteFetch, offset, err)
		}

		all = append(all, items...)

		if len(items) < pageSize || len(all) >= total {
			return all, nil
		}
	}
}
