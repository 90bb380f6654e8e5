// Package tasks implements the playlist backup pipeline: pagination, catalog
// reading, restore, and reference resolution.
//
// # Core Operations
//
//  1. [FetchAll] : Generic walk of an offset-paginated listing endpoint.
//     Returns every item in provider order, or an error; never a partial
//     sequence, never a retry.
//
//  2. [Catalog.ListPlaylists] / [Catalog.FetchTracks] : Enumerate the
//     account's playlists and a playlist's tracks through a
//     [services.Session]. Track slots whose underlying item is gone are
//     skipped with a warning and the kept tracks renumbered 0..N-1.
//
//  3. [Restorer.Restore] : Create a new remote playlist and fill it from a
//     backup in batches of at most 100 URIs, in position order. Failed
//     batches and provider-rejected tracks end up in the result's skip list
//     instead of aborting the run.
//
//  4. [ResolvePlaylistRef] : Map a user-supplied reference (remote ID, share
//     link, or 1-based listing ordinal) to a remote playlist ID.
//
//  5. [Catalog.ExportAll] : Back up every playlist in the library to its own
//     file, continuing past per-playlist failures and writing a manifest of
//     the run.
//
// # Execution Model
//
// Everything here runs sequentially with one outstanding remote call at a
// time; pacing is the session's concern. Cancellation rides on the
// context passed to each operation.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate] carrying phase,
// step counters, and display messages. Sends are non-blocking (select with
// default), so a slow or absent consumer never stalls the pipeline.
package tasks
