package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lfx/internal/models"
)

var _ list.Item = recommendationItem{}

// recommendationItem wraps [models.Recommendation] to implement [list.Item].
// Excluded items stay in the list so the listener can toggle them back in.
type recommendationItem struct {
	rec      models.Recommendation
	excluded bool
}

func (i recommendationItem) FilterValue() string { return i.rec.ArtistName }
func (i recommendationItem) Title() string {
	if i.excluded {
		return fmt.Sprintf("[ ] %s", i.rec.ArtistName)
	}
	return fmt.Sprintf("[x] %s", i.rec.ArtistName)
}
func (i recommendationItem) Description() string {
	if i.excluded {
		return fmt.Sprintf("%s • skipped", i.rec.AlbumName)
	}
	return i.rec.AlbumName
}
