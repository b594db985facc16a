// Package provider declares the narrow interfaces the pipeline consumes
// from a streaming service: metadata resolution, cover retrieval and a
// playback engine that pushes decoded audio frames into a Sink.
//
// A Session is created once at startup and shared by every pipeline.
// Implementations must be safe for concurrent use. Players are not: each
// pipeline attempt creates its own.
package provider

import (
	"context"
	"fmt"

	"github.com/handiism/spotify-dl/internal/model"
)

// Session is an authenticated handle to the streaming service.
type Session interface {
	// ResolveMetadata returns the descriptive data for a playable id.
	ResolveMetadata(ctx context.Context, id model.TrackID) (*model.TrackMetadata, error)

	// ResolveCollection expands an album or playlist into its playable
	// ids in collection order.
	ResolveCollection(ctx context.Context, id model.TrackID) ([]model.TrackID, error)

	// FetchCover downloads the image referenced by an AlbumMetadata.CoverURL.
	FetchCover(ctx context.Context, ref string) ([]byte, error)

	// NewPlayer creates a playback engine that delivers audio into sink.
	NewPlayer(sink Sink) Player
}

// Frame is one chunk of decoded audio: interleaved samples in [-1, 1].
type Frame struct {
	Samples []float64
}

// Sink receives decoded audio from a Player. Write is called for every
// frame in order, then Finish exactly once at the end of the track.
// Implementations must not block the caller.
type Sink interface {
	Write(frame Frame) error
	Finish() error
}

// Player is a playback engine for one track at a time.
type Player interface {
	// Load asks the engine to start playing id. Progress is reported on
	// Events; Load itself does not wait for audio.
	Load(ctx context.Context, id model.TrackID)

	// Events delivers state changes. The channel is closed by Stop.
	Events() <-chan PlayerEvent

	// Stop halts playback and releases the engine. It is idempotent.
	Stop()
}

// EventKind classifies a PlayerEvent.
type EventKind int

const (
	EventLoading EventKind = iota
	EventPlaying
	EventTrackChanged
	EventEndOfTrack
	EventUnavailable
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventLoading:
		return "loading"
	case EventPlaying:
		return "playing"
	case EventTrackChanged:
		return "track-changed"
	case EventEndOfTrack:
		return "end-of-track"
	case EventUnavailable:
		return "unavailable"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// IsReady reports whether the event signals a successful load.
func (k EventKind) IsReady() bool {
	return k == EventPlaying || k == EventTrackChanged || k == EventEndOfTrack
}

// PlayerEvent is a state change reported by a Player.
type PlayerEvent struct {
	Kind    EventKind
	TrackID model.TrackID

	// Reason explains Unavailable and Error events.
	Reason string
}
