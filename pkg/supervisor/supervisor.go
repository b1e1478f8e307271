// Package supervisor owns the top-level lifecycle of long-running
// components. Children are restarted one-for-one on failure.
package supervisor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Child is a long-running component managed by the supervisor. Run
// blocks until the child exits; returning nil is a normal exit and is
// not restarted, returning an error triggers a restart.
type Child interface {
	Name() string
	Run(ctx context.Context) error
}

// ChildFunc adapts a function to the Child interface.
type ChildFunc struct {
	ChildName string
	Fn        func(ctx context.Context) error
}

func (c ChildFunc) Name() string                  { return c.ChildName }
func (c ChildFunc) Run(ctx context.Context) error { return c.Fn(ctx) }

// Default restart policy.
const (
	DefaultRestartDelay = time.Second
	DefaultMaxRestarts  = 5
)

// Options configure a Supervisor.
type Options struct {
	// RestartDelay is the initial delay before restarting a failed
	// child. It doubles after each consecutive failure.
	RestartDelay time.Duration

	// MaxRestarts caps consecutive failures per child before the
	// supervisor gives the child up.
	MaxRestarts int

	Logger *zap.Logger
}

// Supervisor runs and restarts its children until stopped. A
// supervisor with zero children starts and stops cleanly.
type Supervisor struct {
	opts     Options
	log      *zap.Logger
	mu       sync.Mutex
	children []Child
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

// New creates a Supervisor.
func New(opts Options) *Supervisor {
	if opts.RestartDelay <= 0 {
		opts.RestartDelay = DefaultRestartDelay
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = DefaultMaxRestarts
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Supervisor{opts: opts, log: opts.Logger}
}

// Add registers a child. Children added after Start are ignored.
func (s *Supervisor) Add(c Child) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.log.Warn("child added after start, ignored", zap.String("child", c.Name()))
		return
	}
	s.children = append(s.children, c)
}

// Start launches all children. It returns immediately; children run
// until Stop is called or ctx is canceled.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.log.Info("supervisor starting", zap.Int("children", len(s.children)))
	for _, child := range s.children {
		s.wg.Add(1)
		go s.runChild(runCtx, child)
	}
	return nil
}

// runChild runs one child with one-for-one restarts.
func (s *Supervisor) runChild(ctx context.Context, child Child) {
	defer s.wg.Done()

	delay := s.opts.RestartDelay
	failures := 0

	for {
		err := child.Run(ctx)

		if ctx.Err() != nil {
			return
		}
		if err == nil {
			s.log.Info("child exited", zap.String("child", child.Name()))
			return
		}

		failures++
		if failures > s.opts.MaxRestarts {
			s.log.Error("child failed too many times, giving up",
				zap.String("child", child.Name()),
				zap.Int("failures", failures-1),
				zap.Error(err))
			return
		}

		s.log.Warn("child failed, restarting",
			zap.String("child", child.Name()),
			zap.Int("attempt", failures),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// Stop cancels all children and waits for them to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info("supervisor stopped")
}
