// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : Discovery run bookkeeping with status and username lookups
//   - [TrackMatchRepository] : Resolved (artist, album) → URI matches with pair-based lookups
//   - [MatchCacheAdapter] : tasks.MatchCacher implementation over the match table
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42, match #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
