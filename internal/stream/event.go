package stream

import (
	"errors"
	"fmt"

	"github.com/handiism/spotify-dl/internal/model"
)

// Event is one element of a stream: Write, Finished, Retry or Error.
type Event interface {
	isEvent()
}

// Write carries converted samples. BytesSent is the running total for
// the attempt; BytesTotal is the duration-based estimate and may be
// smaller than BytesSent.
type Write struct {
	BytesSent  int64
	BytesTotal int64
	Content    []int32
}

// Finished is the terminal event of a successful stream.
type Finished struct{}

// Retry announces that a failed load will be retried. Attempt counts
// from 1 up to MaxAttempts.
type Retry struct {
	Attempt     int
	MaxAttempts int
}

// Error is the terminal event of a failed stream.
type Error struct {
	Err error
}

func (Write) isEvent()    {}
func (Finished) isEvent() {}
func (Retry) isEvent()    {}
func (Error) isEvent()    {}

// IsTerminal reports whether ev ends a stream.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case Finished, Error:
		return true
	}
	return false
}

var (
	// ErrUnavailable is reported when the provider refuses to play a track.
	ErrUnavailable = errors.New("track unavailable")

	// ErrPlayback is reported when the player fails after audio started.
	ErrPlayback = errors.New("playback failed")

	// ErrConsumerClosed is returned by SampleSink writes after the
	// consumer closed the sink.
	ErrConsumerClosed = errors.New("sample sink consumer closed")

	// ErrSinkFinished is returned by SampleSink writes after Finish.
	ErrSinkFinished = errors.New("sample sink already finished")
)

// LoadError is reported once every retry of a track load has failed.
type LoadError struct {
	Track   model.TrackID
	Retries int
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s failed after %d retries: %v", e.Track, e.Retries, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
