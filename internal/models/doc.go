// Package models defines domain entities and persistence interfaces for the spx playlist backup tool.
//
// The package contains three categories of types:
//
// 1. Catalog types: Snapshots of remote state at fetch time
//   - [PlaylistSummary] : Playlist metadata as returned by the listing endpoint
//   - [TrackRecord] : One track of a playlist, positioned 0..N-1
//   - [TrackListing] : Result of walking a playlist's track pages, including skipped items
//
// 2. Backup and restore types: The on-disk schema and restore accounting
//   - [Backup] : Top-level backup file shape (exported_at, source_account, playlist, tracks)
//   - [BackupPlaylist] : Playlist subset embedded in a backup
//   - [RestoreResult] : Counts and skip list produced by a restore
//   - [SkippedTrack] : A track that was not added, with a [SkipReason]
//
// 3. Persistent entities: Database-backed models
//   - [CachedToken] : Per-account OAuth token rows
//
// Catalog and backup types are read-only values constructed fresh per call; they are
// never mutated or shared across operations. Persistent entities implement the [Model]
// interface, and [Repository] defines the CRUD surface their stores provide.
package models
