package tasks

import (
	"fmt"

	"github.com/desertthunder/lfx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchHistory Phase = iota
	FindSimilar
	Authorize
	CreatePlaylist
	SearchTracks
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchHistory:
		return "fetch_history"
	case FindSimilar:
		return "find_similar"
	case Authorize:
		return "authorize"
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func fetchHistoryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: "📊 Fetching your top albums...",
	}
}

func findSimilarUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindSimilar,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("🔍 Finding similar artists to: %s", artist),
	}
}

func recommendationUpdate(step, total int, rec models.Recommendation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindSimilar,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ Added recommendation: %s - %s", rec.ArtistName, rec.AlbumName),
		Data:    rec,
	}
}

func createPlaylistUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: "Creating playlist...",
	}
}

func playlistCreatedUpdate(step, total int, handle *models.PlaylistHandle) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Created playlist: %s", handle.PublicURL),
		Data:    handle,
	}
}

func searchTracksUpdate(step, total int, rec *models.Recommendation) ProgressUpdate {
	if rec == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Searching for tracks on Spotify...",
		}
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, rec.ArtistName, rec.AlbumName),
	}
}

func trackFoundUpdate(step, total int, match models.TrackMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found track on Spotify: %s - %s", match.ArtistName, match.AlbumName),
		Data:    match,
	}
}

func albumTrackFoundUpdate(step, total int, match models.TrackMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found album track on Spotify: %s - %s", match.ArtistName, match.AlbumName),
		Data:    match,
	}
}

func cachedMatchUpdate(step, total int, match models.TrackMatch) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Using cached match: %s - %s", match.ArtistName, match.AlbumName),
		Data:    match,
	}
}

func searchFailedUpdate(step, total int, rec models.Recommendation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Warning: Search failed for %s - %s", rec.ArtistName, rec.AlbumName),
	}
}

func addTracksUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: "Adding tracks to playlist...",
	}
}

func batchFailedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: "Warning: Failed to add some tracks to playlist",
	}
}

func noMatchesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: "Warning: No tracks found to add to playlist",
	}
}
