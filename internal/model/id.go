package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned when a string is neither a
	// provider URI nor an open.spotify.com URL.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrUnsupportedKind is returned when an identifier parses but names
	// something that cannot be downloaded as audio.
	ErrUnsupportedKind = errors.New("unsupported identifier kind")
)

// Kind is the catalog object type an identifier refers to.
type Kind string

const (
	KindTrack    Kind = "track"
	KindEpisode  Kind = "episode"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
	KindShow     Kind = "show"
	KindArtist   Kind = "artist"
)

// IsCollection reports whether the kind expands into several tracks.
func (k Kind) IsCollection() bool {
	return k == KindAlbum || k == KindPlaylist
}

// IsPlayable reports whether the kind can be streamed directly.
func (k Kind) IsPlayable() bool {
	return k == KindTrack || k == KindEpisode
}

func (k Kind) valid() bool {
	switch k {
	case KindTrack, KindEpisode, KindAlbum, KindPlaylist, KindShow, KindArtist:
		return true
	}
	return false
}

// TrackID is an opaque provider identifier together with its kind.
type TrackID struct {
	Kind Kind
	ID   string
}

// URI returns the canonical "spotify:<kind>:<id>" form.
func (t TrackID) URI() string {
	return fmt.Sprintf("spotify:%s:%s", t.Kind, t.ID)
}

// URL returns the public web link for the identifier.
func (t TrackID) URL() string {
	return fmt.Sprintf("https://open.spotify.com/%s/%s", t.Kind, t.ID)
}

func (t TrackID) String() string {
	return t.URI()
}

var (
	uriPattern = regexp.MustCompile(`^spotify:([a-z]+):([A-Za-z0-9]+)$`)
	urlPattern = regexp.MustCompile(`^https?://open\.spotify\.com/(?:intl-[A-Za-z-]+/)?([a-z]+)/([A-Za-z0-9]+)/?(?:[?#].*)?$`)
)

// ParseID parses a provider URI or web URL.
//
// Accepted forms:
//   - spotify:track:4uLU6hMCjMI75M1A2tKUQC
//   - https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC
//   - https://open.spotify.com/intl-de/album/1DFixLWuPkv3KT3TnV35m3?si=abc
//
// Any other input returns an error wrapping ErrInvalidIdentifier.
func ParseID(s string) (TrackID, error) {
	s = strings.TrimSpace(s)

	m := uriPattern.FindStringSubmatch(s)
	if m == nil {
		m = urlPattern.FindStringSubmatch(s)
	}
	if m == nil {
		return TrackID{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}

	kind := Kind(m[1])
	if !kind.valid() {
		return TrackID{}, fmt.Errorf("%w: unknown kind %q in %q", ErrInvalidIdentifier, m[1], s)
	}

	return TrackID{Kind: kind, ID: m[2]}, nil
}
