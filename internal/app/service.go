// Package app provides the engine coordinating players and scans for live
// events on top of a shared filesystem.
//
// There is no in-process coordinator: correctness holds across independent
// OS processes because every read and write happens under advisory locks on
// dedicated lock files. Two tiers of locks exist per collection: a master
// pseudo-resource guarding the collection's shape, and one lock per item.
//
// Global lock order, which every operation must respect to stay
// deadlock-free: master of the outer collection, then the primary item,
// then any secondary item. The mark transition takes scan item, then
// new-player item, then old-player item; no operation ever takes two player
// item locks without holding a scan item lock first.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/scanmark/internal/adapters/fslock"
	"github.com/okian/scanmark/internal/adapters/repository"
	"github.com/okian/scanmark/pkg/logger"
)

// Default engine configuration.
const (
	defaultDataDir     = "./data"
	defaultLockTimeout = 5 * time.Second
	defaultLockRetry   = 50 * time.Millisecond
)

// Service implements the engine operations over one storage root.
//
// Multiple Service instances may coexist, in one process or many; instances
// sharing a root coordinate purely through lock files.
type Service struct {
	mu sync.Mutex

	dataDir     string
	lockTimeout time.Duration
	lockRetry   time.Duration

	locks fslock.Source
	store *repository.Store
	paths *repository.Resolver

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the storage root directory.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithLockTimeout bounds the wait for any single lock acquisition.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// WithLockRetry sets the polling interval while waiting for a lock.
func WithLockRetry(retry time.Duration) Option {
	return func(s *Service) {
		if retry > 0 {
			s.lockRetry = retry
		}
	}
}

// WithLockSource injects a lock source, replacing the default flock-backed
// one. Used by tests to exercise locking discipline in memory.
func WithLockSource(src fslock.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.locks = src
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:     defaultDataDir,
		lockTimeout: defaultLockTimeout,
		lockRetry:   defaultLockRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the storage root and lock source. Idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.locks == nil {
		s.locks = fslock.NewFlockSource(
			fslock.WithWait(s.lockTimeout),
			fslock.WithRetry(s.lockRetry),
		)
	}

	s.paths = repository.NewResolver(s.dataDir)
	s.store = repository.NewStore(s.paths)
	if err := s.store.EnsureRoot(); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "engine started",
		logger.String("dataDir", s.dataDir),
		logger.Duration("lockTimeout", s.lockTimeout),
	)
	return nil
}

// Stop shuts the service down. Held locks are released by their scopes;
// there is no background state to tear down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "engine stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":       started,
		"dataDir":       s.dataDir,
		"lockTimeoutMs": s.lockTimeout.Milliseconds(),
	}
	if !started {
		return stats
	}
	if events, err := s.ListEvents(ctx); err == nil {
		stats["events"] = len(events)
	}
	return stats
}

// acquire takes one lock, translating a timeout into ErrUnavailable.
func (s *Service) acquire(ctx context.Context, path string, mode fslock.Mode) (fslock.Release, error) {
	rel, err := s.locks.Acquire(ctx, path, mode)
	if err != nil {
		if errors.Is(err, fslock.ErrUnavailable) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnavailable)
		}
		return nil, err
	}
	return rel, nil
}

func (s *Service) lockMaster(ctx context.Context, kind repository.Kind, event string, mode fslock.Mode) (fslock.Release, error) {
	return s.acquire(ctx, s.paths.MasterLockPath(kind, event), mode)
}

func (s *Service) lockItem(ctx context.Context, kind repository.Kind, id, event string, mode fslock.Mode) (fslock.Release, error) {
	return s.acquire(ctx, s.paths.LockPath(kind, id, event), mode)
}

// ensureEvent takes a shared lock on the event item and verifies the event
// directory exists. The returned release must stay held for the duration of
// any player or scan access inside the event, so a concurrent DeleteEvent
// (which needs the exclusive event lock) cannot pull the directory away.
func (s *Service) ensureEvent(ctx context.Context, event string) (fslock.Release, error) {
	rel, err := s.lockItem(ctx, repository.KindEvent, event, "", fslock.Shared)
	if err != nil {
		return nil, err
	}
	if !s.store.EventDirExists(event) {
		rel()
		return nil, fmt.Errorf("event %s: %w", event, ErrNotFound)
	}
	return rel, nil
}
