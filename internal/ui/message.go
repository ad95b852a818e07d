package ui

import (
	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/tasks"
)

// recommendationsFetchedMsg is delivered when the discovery pass finishes.
type recommendationsFetchedMsg struct {
	recommendations []models.Recommendation
	err             error
}

// progressUpdateMsg wraps a [tasks.ProgressUpdate] streamed while a build runs.
type progressUpdateMsg tasks.ProgressUpdate

// buildCompleteMsg is delivered once with the final build outcome.
type buildCompleteMsg struct {
	result *tasks.BuildResult
	err    error
}
