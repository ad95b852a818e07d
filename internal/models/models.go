// package models defines the data model for the lfx discovery pipeline
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in lfx.
// Implementations include Run and TrackMatchRecord.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ListeningRecord is one album drawn from the listener's recent history on
// the source service.
type ListeningRecord struct {
	ArtistName string `json:"artist"`
	AlbumName  string `json:"album"`
}

// Recommendation pairs a similar artist with that artist's top album.
//
// Produced by the discovery engine. Artist names are unique across a run's
// recommendation list and the list preserves discovery order.
type Recommendation struct {
	ArtistName string `json:"artist"`
	AlbumName  string `json:"album"`
}

// PlaylistHandle addresses a playlist created on the destination service.
// All mutation after creation goes through ID; PublicURL is for display.
type PlaylistHandle struct {
	ID        string `json:"id"`
	PublicURL string `json:"url"`
}

// MatchVia records how a recommendation resolved to a track URI.
type MatchVia string

const (
	MatchViaTrack MatchVia = "track" // direct hit in the track search results
	MatchViaAlbum MatchVia = "album" // first track of the matched album
	MatchViaCache MatchVia = "cache" // served from the local match cache
)

// TrackMatch is the outcome of reconciling one Recommendation against the
// destination catalog. Matched is false when no track could be resolved;
// an unmatched recommendation is a valid outcome, not an error.
type TrackMatch struct {
	ArtistName string   `json:"artist"`
	AlbumName  string   `json:"album"`
	TrackURI   string   `json:"track_uri,omitempty"` // e.g. spotify:track:4uLU6hMCjMI75M1A2tKUQC
	Matched    bool     `json:"matched"`
	Via        MatchVia `json:"via,omitempty"`
}

// RunExport bundles everything one discovery run produced, for file export.
//
// Matches is empty and Playlist nil when the run stopped at discovery.
// When present, Matches is index-aligned with Recommendations.
type RunExport struct {
	Username        string           `json:"username"`
	Period          string           `json:"period"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Recommendations []Recommendation `json:"recommendations"`
	Matches         []TrackMatch     `json:"matches,omitempty"`
	Playlist        *PlaylistHandle  `json:"playlist,omitempty"`
}
