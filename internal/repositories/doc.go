// Package repositories implements SQLite persistence for stored credentials.
//
// [TokenRepository] keeps one OAuth token row per account label in the
// cached_tokens table, so repeat commands can reuse a session without
// reopening the browser. It implements the generic [models.Repository]
// interface plus the account-keyed lookups the session layer needs:
// [TokenRepository.GetByAccount], [TokenRepository.Latest], and
// [TokenRepository.Upsert].
//
// Sequence numbers provide stable, human-readable ordering independent of
// UUIDs and creation timestamps. The [NextSequence] function atomically
// increments per-table counters in dedicated sequence tables.
package repositories
