package mock

import (
	"context"
	"sync"
	"time"

	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// Player plays a Script into its sink.
type Player struct {
	session *Session
	sink    provider.Sink
	events  chan provider.PlayerEvent
	done    chan struct{}

	loaded   bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Events implements provider.Player.
func (p *Player) Events() <-chan provider.PlayerEvent {
	return p.events
}

// Load implements provider.Player. Only the first Load on a player is honored.
func (p *Player) Load(ctx context.Context, id model.TrackID) {
	if p.loaded {
		return
	}
	p.loaded = true

	script, n := p.session.begin(id)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.play(ctx, id, script, n)
	}()
}

// Stop implements provider.Player.
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
		close(p.events)
		if p.loaded {
			p.session.end()
		}
	})
}

func (p *Player) play(ctx context.Context, id model.TrackID, script *Script, n int) {
	if script == nil {
		p.emit(provider.PlayerEvent{Kind: provider.EventUnavailable, TrackID: id, Reason: "unknown track"})
		return
	}
	if script.FailLoads < 0 || n <= script.FailLoads {
		for _, frame := range script.FramesBeforeUnavailable {
			if err := p.sink.Write(provider.Frame{Samples: frame}); err != nil {
				return
			}
		}
		p.emit(provider.PlayerEvent{Kind: provider.EventUnavailable, TrackID: id, Reason: "scripted unavailable"})
		return
	}

	if !p.emit(provider.PlayerEvent{Kind: provider.EventPlaying, TrackID: id}) {
		return
	}

	for _, frame := range script.Frames {
		if script.FrameDelay > 0 && !p.wait(ctx, script.FrameDelay) {
			return
		}
		if err := p.sink.Write(provider.Frame{Samples: frame}); err != nil {
			return
		}
	}

	if script.StreamErr != "" {
		p.emit(provider.PlayerEvent{Kind: provider.EventError, TrackID: id, Reason: script.StreamErr})
		return
	}

	if err := p.sink.Finish(); err != nil {
		return
	}
	p.emit(provider.PlayerEvent{Kind: provider.EventEndOfTrack, TrackID: id})
}

func (p *Player) emit(ev provider.PlayerEvent) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.done:
		return false
	}
}

func (p *Player) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-p.done:
		return false
	case <-ctx.Done():
		return false
	}
}
