package models

import (
	"fmt"
	"time"
)

// TrackMatchRecord persists a resolved (artist, album) → track URI match so
// later runs can reuse it without a catalog search.
//
// Only successful matches are stored. The via column keeps the original
// resolution provenance (track or album); cache provenance is assigned by the
// lookup path, never persisted.
type TrackMatchRecord struct {
	id        string
	sequence  int
	artist    string
	album     string
	trackURI  string
	via       MatchVia
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewTrackMatchRecord wraps a successful TrackMatch for persistence
func NewTrackMatchRecord(sequence int, match TrackMatch) *TrackMatchRecord {
	now := time.Now()
	return &TrackMatchRecord{
		sequence:  sequence,
		artist:    match.ArtistName,
		album:     match.AlbumName,
		trackURI:  match.TrackURI,
		via:       match.Via,
		createdAt: now,
		updatedAt: now,
	}
}

func (m *TrackMatchRecord) ID() string            { return m.id }
func (m *TrackMatchRecord) Sequence() int         { return m.sequence }
func (m *TrackMatchRecord) Artist() string        { return m.artist }
func (m *TrackMatchRecord) Album() string         { return m.album }
func (m *TrackMatchRecord) TrackURI() string      { return m.trackURI }
func (m *TrackMatchRecord) Via() MatchVia         { return m.via }
func (m *TrackMatchRecord) CreatedAt() time.Time  { return m.createdAt }
func (m *TrackMatchRecord) UpdatedAt() time.Time  { return m.updatedAt }
func (m *TrackMatchRecord) DeletedAt() *time.Time { return m.deletedAt }

func (m *TrackMatchRecord) SetID(id string)           { m.id = id }
func (m *TrackMatchRecord) SetUpdatedAt(t time.Time)  { m.updatedAt = t }
func (m *TrackMatchRecord) SetDeletedAt(t *time.Time) { m.deletedAt = t }

// Match rebuilds the TrackMatch this record was created from
func (m *TrackMatchRecord) Match() TrackMatch {
	return TrackMatch{
		ArtistName: m.artist,
		AlbumName:  m.album,
		TrackURI:   m.trackURI,
		Matched:    true,
		Via:        m.via,
	}
}

// Validate checks that the record describes a complete, persistable match
func (m *TrackMatchRecord) Validate() error {
	if m.artist == "" {
		return fmt.Errorf("track match artist is required")
	}
	if m.album == "" {
		return fmt.Errorf("track match album is required")
	}
	if m.trackURI == "" {
		return fmt.Errorf("track match URI is required")
	}
	switch m.via {
	case MatchViaTrack, MatchViaAlbum:
	default:
		return fmt.Errorf("invalid track match provenance: %s", m.via)
	}
	return nil
}
