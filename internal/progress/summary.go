package progress

import (
	"fmt"
	"sync"
)

// Summary counts how tracks ended.
type Summary struct {
	mu        sync.Mutex
	completed int
	failed    int
	skipped   int
	failures  []string
}

// Consume counts terminal updates until the channel is closed.
func (s *Summary) Consume(updates <-chan Update) {
	for u := range updates {
		s.Add(u)
	}
}

// Add counts u if it ends a bar.
func (s *Summary) Add(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch u.Kind {
	case Finished:
		s.completed++
	case Failed:
		s.failed++
		s.failures = append(s.failures, fmt.Sprintf("%s: %s", u.Name, u.Message))
	case Skipped:
		s.skipped++
	}
}

// Counts returns completed, failed and skipped totals.
func (s *Summary) Counts() (completed, failed, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed, s.failed, s.skipped
}

// Failures lists "name: message" for every failed track.
func (s *Summary) Failures() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.failures...)
}

func (s *Summary) String() string {
	c, f, k := s.Counts()
	return fmt.Sprintf("%d completed, %d failed, %d skipped", c, f, k)
}
