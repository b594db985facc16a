// Package mock provides a scripted, in-memory implementation of the
// provider interfaces. It is used by the stream and download tests to
// exercise retries, failures and concurrency without a network.
//
// Thread-safety: Session is safe for concurrent use.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// Script describes how the mock answers for one track.
type Script struct {
	// Meta is returned by ResolveMetadata. When nil, a minimal record is
	// synthesized from the id.
	Meta *model.TrackMetadata

	// MetaErr makes ResolveMetadata fail.
	MetaErr error

	// FailLoads is how many Load calls answer Unavailable before a load
	// succeeds. A negative value fails every load.
	FailLoads int

	// FramesBeforeUnavailable are written to the sink by each failing
	// load before it answers Unavailable.
	FramesBeforeUnavailable [][]float64

	// Frames are delivered in order after a successful load.
	Frames [][]float64

	// FrameDelay is slept before each frame.
	FrameDelay time.Duration

	// StreamErr, when set, is reported as a player Error after the
	// frames instead of finishing the track.
	StreamErr string
}

// Session is a scripted provider.Session.
type Session struct {
	mu          sync.Mutex
	scripts     map[string]*Script
	collections map[string][]model.TrackID
	covers      map[string][]byte
	loads       map[string]int
	active      int
	maxActive   int
}

// NewSession creates an empty scripted session.
func NewSession() *Session {
	return &Session{
		scripts:     make(map[string]*Script),
		collections: make(map[string][]model.TrackID),
		covers:      make(map[string][]byte),
		loads:       make(map[string]int),
	}
}

// AddTrack registers the behavior for a track id.
func (s *Session) AddTrack(id model.TrackID, script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[id.ID] = &script
}

// AddCollection registers the expansion of an album or playlist.
func (s *Session) AddCollection(id model.TrackID, tracks []model.TrackID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[id.ID] = tracks
}

// AddCover registers image bytes for a cover reference.
func (s *Session) AddCover(ref string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.covers[ref] = data
}

// Loads returns how many times Load was called for id.
func (s *Session) Loads(id model.TrackID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[id.ID]
}

// MaxActive returns the highest number of players that were loaded and
// not yet stopped at the same time.
func (s *Session) MaxActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxActive
}

// Active returns the number of players currently loaded.
func (s *Session) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ResolveMetadata implements provider.Session.
func (s *Session) ResolveMetadata(ctx context.Context, id model.TrackID) (*model.TrackMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	script, ok := s.scripts[id.ID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("mock: unknown track %s", id)
	}
	if script.MetaErr != nil {
		return nil, script.MetaErr
	}
	if script.Meta != nil {
		meta := *script.Meta
		meta.ID = id
		return &meta, nil
	}
	return &model.TrackMetadata{
		ID:       id,
		Title:    "Track " + id.ID,
		Artists:  []string{"Artist"},
		Album:    model.AlbumMetadata{Name: "Album"},
		Duration: time.Second,
	}, nil
}

// ResolveCollection implements provider.Session.
func (s *Session) ResolveCollection(ctx context.Context, id model.TrackID) ([]model.TrackID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.collections[id.ID]
	if !ok {
		return nil, fmt.Errorf("mock: unknown collection %s", id)
	}
	return append([]model.TrackID(nil), tracks...), nil
}

// FetchCover implements provider.Session.
func (s *Session) FetchCover(ctx context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.covers[ref]
	if !ok {
		return nil, fmt.Errorf("mock: no cover %q", ref)
	}
	return data, nil
}

// NewPlayer implements provider.Session.
func (s *Session) NewPlayer(sink provider.Sink) provider.Player {
	return &Player{
		session: s,
		sink:    sink,
		events:  make(chan provider.PlayerEvent, 16),
		done:    make(chan struct{}),
	}
}

// begin records a Load and returns its 1-based number for the track.
func (s *Session) begin(id model.TrackID) (*Script, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loads[id.ID]++
	s.active++
	s.maxActive = max(s.maxActive, s.active)
	return s.scripts[id.ID], s.loads[id.ID]
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
}
