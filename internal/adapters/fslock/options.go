package fslock

import "time"

// Option applies a configuration option to the FlockSource.
type Option func(*FlockSource)

// WithWait bounds how long an acquisition may block before failing.
func WithWait(wait time.Duration) Option {
	return func(s *FlockSource) {
		if wait > 0 {
			s.wait = wait
		}
	}
}

// WithRetry sets the polling interval while waiting for a contended lock.
func WithRetry(retry time.Duration) Option {
	return func(s *FlockSource) {
		if retry > 0 {
			s.retry = retry
		}
	}
}
