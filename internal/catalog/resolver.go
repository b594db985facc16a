// Package catalog turns user-supplied identifiers into the ordered list
// of tracks to download.
//
// Tracks and episodes pass through unchanged. Albums and playlists are
// expanded through the provider session, each track keeping its 1-based
// position in the collection. An identifier that cannot be parsed or
// expanded is reported on its own and never stops the others.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// InputError ties a resolution failure to the identifier that caused it.
type InputError struct {
	Input string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Input, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Result is the outcome of Resolve.
type Result struct {
	Tracks []model.Track
	Errors []*InputError
}

// Resolver expands identifiers using a provider session.
type Resolver struct {
	session provider.Session
	logger  *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(session provider.Session, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{session: session, logger: logger}
}

// Resolve expands inputs in order.
func (r *Resolver) Resolve(ctx context.Context, inputs []string) Result {
	var res Result

	for _, input := range inputs {
		tracks, err := r.resolveOne(ctx, input)
		if err != nil {
			r.logger.Warn("cannot resolve identifier", "input", input, "error", err)
			res.Errors = append(res.Errors, &InputError{Input: input, Err: err})
			continue
		}
		r.logger.Debug("resolved identifier", "input", input, "tracks", len(tracks))
		res.Tracks = append(res.Tracks, tracks...)
	}

	return res
}

func (r *Resolver) resolveOne(ctx context.Context, input string) ([]model.Track, error) {
	id, err := model.ParseID(input)
	if err != nil {
		return nil, err
	}

	switch {
	case id.Kind.IsPlayable():
		return []model.Track{{ID: id}}, nil

	case id.Kind.IsCollection():
		ids, err := r.session.ResolveCollection(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", id.Kind, err)
		}
		tracks := lo.Map(ids, func(tid model.TrackID, i int) model.Track {
			return model.Track{ID: tid, Position: i + 1}
		})
		return lo.Filter(tracks, func(t model.Track, _ int) bool {
			return t.ID.Kind.IsPlayable()
		}), nil

	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedKind, id.Kind)
	}
}
