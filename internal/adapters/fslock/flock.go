package fslock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/okian/scanmark/pkg/metrics"
)

// Default flock source configuration.
const (
	defaultWait  = 5 * time.Second
	defaultRetry = 50 * time.Millisecond
)

// FlockSource acquires locks through flock(2) on dedicated lock files.
// The lock file is created on first acquisition and is distinct from any
// data file, so a lock can exist before the record it guards does.
type FlockSource struct {
	wait  time.Duration
	retry time.Duration
}

// NewFlockSource creates a flock-backed Source with configuration options.
func NewFlockSource(opts ...Option) *FlockSource {
	s := &FlockSource{
		wait:  defaultWait,
		retry: defaultRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire takes the lock file at name in the given mode. The wait is bounded
// by the source's configured timeout and by ctx, whichever ends first.
func (s *FlockSource) Acquire(ctx context.Context, name string, mode Mode) (Release, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	fl := flock.New(name)
	start := time.Now()

	var locked bool
	var err error
	if mode == Shared {
		locked, err = fl.TryRLockContext(waitCtx, s.retry)
	} else {
		locked, err = fl.TryLockContext(waitCtx, s.retry)
	}
	metrics.RecordLockWait(mode.String(), float64(time.Since(start).Milliseconds()))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordLockTimeout(mode.String())
			return nil, fmt.Errorf("%s %s: %w", mode, name, ErrUnavailable)
		}
		return nil, fmt.Errorf("%s %s: %w", mode, name, err)
	}
	if !locked {
		metrics.RecordLockTimeout(mode.String())
		return nil, fmt.Errorf("%s %s: %w", mode, name, ErrUnavailable)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = fl.Unlock()
		})
	}, nil
}
