// Package services defines typed clients for the two external catalogs the
// discovery pipeline talks to: Last.fm for listening history and Spotify for
// playlist building.
//
// # History Interface
//
// [HistoryService] covers the read side of discovery: top albums for a user,
// the similar-artist graph, and an artist's single most popular album.
// [LastfmService] implements it against the Last.fm REST API, pacing requests
// with a [rate.Limiter] so bursts of similar-artist lookups stay inside the
// API's informal rate ceiling.
//
// # Catalog Interface
//
// [CatalogService] covers the write side: playlist creation, album/track
// search, album track listing, and batched track insertion. [SpotifyService]
// implements it with a bearer token obtained elsewhere; the client itself
// never runs an OAuth flow.
//
// # Error Handling
//
// Services wrap failures in sentinels from the shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or non-2xx status
//   - [shared.ErrHistoryUnavailable] : top-albums fetch failed, fatal to a run
//   - [shared.ErrNoResults] : an artist has no ranked albums
//   - [shared.ErrPlaylistCreate] : playlist creation rejected
//   - [shared.ErrMissingCredentials] : client constructed without a token
//
// # API Mappings
//
// Both clients convert provider JSON into the small domain types in models:
//   - Last.fm: topalbums/similarartists envelopes → [models.ListeningRecord] and artist names
//   - Spotify: search and playlist responses → [SearchResult], [TrackResult], [models.PlaylistHandle]
package services
