// Package tasks orchestrates the discovery pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Discover] : Listening history → recommendation list
//     - Fetches the user's top albums for the configured period
//     - Walks each album artist's similar-artist neighborhood
//     - Emits (artist, top album) pairs, deduplicated by artist across
//       the whole pass and capped the instant the limit is reached
//     - Lookup failures below the initial history fetch are absorbed
//
//  2. [Engine.Build] : Recommendations → populated playlist
//     - Creates the playlist up front (the only fatal step)
//     - Resolves each recommendation independently: track search first,
//       album-track fallback second, skip on miss
//     - Adds matched URIs in order, chunked at the write API's ceiling
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default
// to prevent blocking.
//
// # Match Caching
//
// The optional [MatchCacher] interface short-circuits repeat resolutions
// across runs. Hits supply the URI without a search; fresh matches are
// recorded after resolution. Cache failures are ignored: persistence
// trouble can cost a cached lookup, never a build.
//
// # Implementation
//
// [DiscoveryEngine] implements [Engine] with dependencies on:
//   - [services.HistoryService] : Last.fm read client
//   - [services.CatalogService] : Spotify write client, passed per build
//   - [MatchCacher] : Optional persistence layer (repositories.MatchCacheAdapter)
package tasks
