// Package models defines domain entities and persistence interfaces for the lfx discovery pipeline.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between pipeline stages
//   - [ListeningRecord] : One album from the listener's Last.fm history
//   - [Recommendation] : A similar artist paired with that artist's top album
//   - [PlaylistHandle] : Address of the playlist created on Spotify
//   - [TrackMatch] : Outcome of reconciling one recommendation against the catalog
//   - [RunExport] : Everything one run produced, bundled for file export
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Run] : Discovery runs with status, counts, and playlist outcome
//   - [TrackMatchRecord] : Resolved (artist, album) → track URI matches for the cache
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
