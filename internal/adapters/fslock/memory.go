package fslock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Default memory source configuration.
const (
	defaultMemoryWait = 5 * time.Second
	memoryPollEvery   = time.Millisecond
)

// memState tracks the holders of one named lock.
type memState struct {
	readers int
	writer  bool
}

// MemorySource implements Source entirely in memory. It exists so the
// locking discipline of callers can be unit-tested without touching the
// filesystem; it is not safe across processes.
type MemorySource struct {
	mu   sync.Mutex
	held map[string]*memState
	wait time.Duration
}

// MemoryOption applies a configuration option to the MemorySource.
type MemoryOption func(*MemorySource)

// WithMemoryWait bounds how long an acquisition may block before failing.
func WithMemoryWait(wait time.Duration) MemoryOption {
	return func(s *MemorySource) {
		if wait > 0 {
			s.wait = wait
		}
	}
}

// NewMemorySource creates an in-memory Source with configuration options.
func NewMemorySource(opts ...MemoryOption) *MemorySource {
	s := &MemorySource{
		held: make(map[string]*memState),
		wait: defaultMemoryWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire takes the named lock in the given mode, polling until granted or
// the wait bound expires.
func (s *MemorySource) Acquire(ctx context.Context, name string, mode Mode) (Release, error) {
	deadline := time.Now().Add(s.wait)
	for {
		if s.tryAcquire(name, mode) {
			var once sync.Once
			return func() {
				once.Do(func() { s.release(name, mode) })
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s %s: %w", mode, name, ErrUnavailable)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s %s: %w", mode, name, ErrUnavailable)
		case <-time.After(memoryPollEvery):
		}
	}
}

// Holders reports the current reader count and writer flag for a name.
func (s *MemorySource) Holders(name string) (readers int, writer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.held[name]
	if !ok {
		return 0, false
	}
	return st.readers, st.writer
}

func (s *MemorySource) tryAcquire(name string, mode Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.held[name]
	if !ok {
		st = &memState{}
		s.held[name] = st
	}
	switch mode {
	case Shared:
		if st.writer {
			return false
		}
		st.readers++
	case Exclusive:
		if st.writer || st.readers > 0 {
			return false
		}
		st.writer = true
	}
	return true
}

func (s *MemorySource) release(name string, mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.held[name]
	if !ok {
		return
	}
	switch mode {
	case Shared:
		if st.readers > 0 {
			st.readers--
		}
	case Exclusive:
		st.writer = false
	}
	if st.readers == 0 && !st.writer {
		delete(s.held, name)
	}
}
