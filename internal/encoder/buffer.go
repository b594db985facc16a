package encoder

import (
	"errors"

	"github.com/handiism/spotify-dl/internal/model"
)

// ErrFrozen is returned when appending to a frozen Buffer.
var ErrFrozen = errors.New("sample buffer is frozen")

// Samples is a finished, read-only block of interleaved samples.
type Samples struct {
	Data   []int32
	Format model.AudioFormat
}

// Frames returns the number of samples per channel.
func (s Samples) Frames() int {
	if s.Format.Channels <= 0 {
		return 0
	}
	return len(s.Data) / s.Format.Channels
}

// Buffer accumulates the samples of one track. It has a single writer
// and is not safe for concurrent use.
type Buffer struct {
	format model.AudioFormat
	data   []int32
	frozen bool
}

// NewBuffer returns an empty buffer. sizeHint, in bytes, preallocates
// capacity and may be zero.
func NewBuffer(format model.AudioFormat, sizeHint int64) *Buffer {
	n := sizeHint / model.StoredSampleBytes
	// guard against absurd estimates
	n = min(n, 1<<28)
	return &Buffer{format: format, data: make([]int32, 0, n)}
}

// Append adds samples in order.
func (b *Buffer) Append(content []int32) error {
	if b.frozen {
		return ErrFrozen
	}
	b.data = append(b.data, content...)
	return nil
}

// Len returns the number of samples held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the in-memory size of the held samples.
func (b *Buffer) Bytes() int64 {
	return int64(len(b.data)) * model.StoredSampleBytes
}

// Freeze ends appending and returns the samples.
func (b *Buffer) Freeze() Samples {
	b.frozen = true
	return Samples{Data: b.data, Format: b.format}
}
