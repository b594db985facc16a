package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// Session streams tracks from a provider with bounded retries.
//
// A Session holds no per-track state and is safe for concurrent use.
type Session struct {
	provider provider.Session
	policy   RetryPolicy
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Session) { s.policy = p }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a Session backed by p.
func NewSession(p provider.Session, opts ...Option) *Session {
	s := &Session{
		provider: p,
		policy:   DefaultRetryPolicy(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the retry policy in use.
func (s *Session) Policy() RetryPolicy {
	return s.policy
}

// Stream resolves the track's metadata and streams it. A metadata
// failure is reported as the terminal Error event.
func (s *Session) Stream(ctx context.Context, track model.Track) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)

		meta, err := s.provider.ResolveMetadata(ctx, track.ID)
		if err != nil {
			send(ctx, out, Error{Err: fmt.Errorf("resolve metadata: %w", err)})
			return
		}
		s.run(ctx, out, meta)
	}()
	return out
}

// StreamMetadata streams a track whose metadata is already resolved.
func (s *Session) StreamMetadata(ctx context.Context, meta *model.TrackMetadata) <-chan Event {
	out := make(chan Event, 1)
	go func() {
		defer close(out)
		s.run(ctx, out, meta)
	}()
	return out
}

// run drives attempts until one finishes or the policy gives up. Exactly
// one terminal event is sent unless the consumer went away.
func (s *Session) run(ctx context.Context, out chan<- Event, meta *model.TrackMetadata) {
	logger := s.logger.With("track_id", meta.ID.URI())
	state := s.policy.Start()

	for {
		if err := ctx.Err(); err != nil {
			send(ctx, out, Error{Err: err})
			return
		}

		retryable, err := s.attempt(ctx, out, meta)
		if err == nil {
			return
		}
		if !retryable {
			send(ctx, out, Error{Err: err})
			return
		}

		delay, ok := state.Next()
		if !ok {
			logger.Warn("load failed, giving up", "retries", s.policy.MaxAttempts, "error", err)
			send(ctx, out, Error{Err: &LoadError{Track: meta.ID, Retries: s.policy.MaxAttempts, Err: err}})
			return
		}

		logger.Info("load failed, retrying",
			"attempt", state.Attempt(),
			"max_attempts", s.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if !send(ctx, out, Retry{Attempt: state.Attempt(), MaxAttempts: s.policy.MaxAttempts}) {
			return
		}
		if err := sleep(ctx, delay); err != nil {
			send(ctx, out, Error{Err: err})
			return
		}
	}
}

// attempt performs one load. It returns nil once Finished was relayed.
// Load failures are retryable; failures after readiness are not.
func (s *Session) attempt(ctx context.Context, out chan<- Event, meta *model.TrackMetadata) (bool, error) {
	sink := NewSampleSink(meta.EstimatedBytes())
	defer sink.Close()

	player := s.provider.NewPlayer(sink)
	defer player.Stop()

	player.Load(ctx, meta.ID)
	if err := awaitReady(ctx, player); err != nil {
		return ctx.Err() == nil, err
	}

	return false, relay(ctx, out, sink, player)
}

func awaitReady(ctx context.Context, player provider.Player) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-player.Events():
			if !ok {
				return errors.New("player stopped before loading")
			}
			switch {
			case ev.Kind.IsReady():
				return nil
			case ev.Kind == provider.EventUnavailable:
				return fmt.Errorf("%w: %s", ErrUnavailable, ev.Reason)
			case ev.Kind == provider.EventError:
				return fmt.Errorf("load: %s", ev.Reason)
			}
		}
	}
}

// relay forwards sink events until Finished. The player is stopped
// before Finished is passed on.
func relay(ctx context.Context, out chan<- Event, sink *SampleSink, player provider.Player) error {
	events := sink.Events()
	playerEvents := player.Events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return errors.New("sample sink closed before finishing")
			}
			if _, done := ev.(Finished); done {
				player.Stop()
				send(ctx, out, ev)
				return nil
			}
			if !send(ctx, out, ev) {
				return ctx.Err()
			}

		case pe, ok := <-playerEvents:
			if !ok {
				playerEvents = nil
				continue
			}
			switch pe.Kind {
			case provider.EventError, provider.EventUnavailable:
				return fmt.Errorf("%w: %s", ErrPlayback, pe.Reason)
			}
		}
	}
}

// send delivers ev unless ctx is done, in which case it makes one
// non-blocking attempt so a still-listening consumer sees the terminal event.
func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
	}

	select {
	case out <- ev:
		return true
	default:
		return false
	}
}
