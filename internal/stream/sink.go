package stream

import (
	"math"
	"sync"

	"github.com/handiism/spotify-dl/internal/model"
	"github.com/handiism/spotify-dl/internal/provider"
)

// SampleSink bridges the player's synchronous frame callbacks to an
// ordered Event channel. It is a single-producer, single-consumer queue
// with no capacity bound, so the producer never waits on the consumer.
type SampleSink struct {
	total int64

	mu       sync.Mutex
	queue    []Event
	sent     int64
	finished bool
	closed   bool

	notify    chan struct{}
	done      chan struct{}
	out       chan Event
	closeOnce sync.Once
}

var _ provider.Sink = (*SampleSink)(nil)

// NewSampleSink starts a sink whose Write events report bytesTotal as
// the expected size.
func NewSampleSink(bytesTotal int64) *SampleSink {
	s := &SampleSink{
		total:  bytesTotal,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan Event),
	}
	go s.pump()
	return s
}

// Events returns the consumer side. It is closed after Finished is
// delivered or once Close is called.
func (s *SampleSink) Events() <-chan Event {
	return s.out
}

// Write converts frame to 16-bit samples held as int32 and queues a
// Write event.
func (s *SampleSink) Write(frame provider.Frame) error {
	content := make([]int32, len(frame.Samples))
	for i, v := range frame.Samples {
		content[i] = toS16(v)
	}

	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.sent += int64(len(content)) * model.StoredSampleBytes
	s.queue = append(s.queue, Write{BytesSent: s.sent, BytesTotal: s.total, Content: content})
	s.mu.Unlock()

	s.wake()
	return nil
}

// Finish queues the terminal Finished event.
func (s *SampleSink) Finish() error {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.finished = true
	s.queue = append(s.queue, Finished{})
	s.mu.Unlock()

	s.wake()
	return nil
}

// Close is called by the consumer when it stops reading. Later writes
// fail with ErrConsumerClosed and the pump goroutine exits.
func (s *SampleSink) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}

// BytesSent returns the running total of queued sample bytes.
func (s *SampleSink) BytesSent() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// writable must be called with mu held.
func (s *SampleSink) writable() error {
	if s.closed {
		return ErrConsumerClosed
	}
	if s.finished {
		return ErrSinkFinished
	}
	return nil
}

func (s *SampleSink) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *SampleSink) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
			if _, ok := ev.(Finished); ok {
				return
			}
		}

		select {
		case <-s.notify:
		case <-s.done:
			return
		}
	}
}

func toS16(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v * math.MaxInt16)
	return int32(max(math.MinInt16, min(math.MaxInt16, v)))
}
