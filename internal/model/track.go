package model

import (
	"fmt"
	"strings"
	"time"
)

// maxDisplayArtists is how many artists are named before "and others".
const maxDisplayArtists = 3

// Track is a playable identifier with its position inside the collection
// it was expanded from. Position is 0 for tracks requested directly.
type Track struct {
	ID       TrackID
	Position int
}

// TrackMetadata is the descriptive data resolved for one track.
//
// It is created by the provider session and read by file naming,
// tagging and size estimation. Nothing mutates it after creation.
type TrackMetadata struct {
	// ID is the identifier the metadata was resolved for.
	ID TrackID

	// Title is the track title.
	Title string

	// Artists lists the credited artists in provider order.
	Artists []string

	// Album describes the release the track belongs to.
	Album AlbumMetadata

	// Duration is the declared playback length.
	Duration time.Duration

	// Position is the 1-based collection position, or 0 when unknown.
	Position int
}

// DisplayName returns "Artists - Title".
//
// At most three artists are named; longer lists end with "and others":
//
//	[A B]       -> "A, B - T"
//	[A B C D]   -> "A, B, C, and others - T"
func (m *TrackMetadata) DisplayName() string {
	artists := m.Artists
	var names string
	if len(artists) > maxDisplayArtists {
		names = strings.Join(artists[:maxDisplayArtists], ", ") + ", and others"
	} else {
		names = strings.Join(artists, ", ")
	}

	if names == "" {
		return m.Title
	}
	return names + " - " + m.Title
}

// PrimaryArtist returns the first credited artist, or "" when none are known.
func (m *TrackMetadata) PrimaryArtist() string {
	if len(m.Artists) == 0 {
		return ""
	}
	return m.Artists[0]
}

// EstimatedBytes is the approximate size of the decoded track in the
// pipeline's sample format.
func (m *TrackMetadata) EstimatedBytes() int64 {
	return CDQuality.EstimateBytes(m.Duration)
}

// OrderedPrefix returns the "NNN - " prefix used for ordered file names.
func OrderedPrefix(position int) string {
	return fmt.Sprintf("%03d - ", position)
}
