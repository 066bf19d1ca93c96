package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newspulse/internal/cache"
	"newspulse/internal/domain"
	"newspulse/internal/hub"
	"newspulse/internal/ports"
)

const (
	defaultInterval      = time.Hour
	defaultRetryInterval = 5 * time.Minute
)

// CycleRunner produces one snapshot per invocation. Implemented by Pipeline.
type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.Snapshot, error)
}

// SchedulerDeps wires the scheduler to the pipeline and the shared state it
// publishes into.
type SchedulerDeps struct {
	Runner        CycleRunner
	Cache         *cache.SnapshotCache
	Hub           *hub.Hub
	Enricher      ports.Enricher
	Interval      time.Duration
	RetryInterval time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// SchedulerHealth describes the background task for health reporting.
type SchedulerHealth struct {
	Cycles      uint64
	LastSuccess time.Time
	LastError   string
}

// Scheduler runs the pipeline on a fixed interval forever, retrying sooner
// after a failed cycle. Cycles are serialized: a manual trigger interrupts the
// interval wait of the single scheduler goroutine rather than starting a
// concurrent cycle.
type Scheduler struct {
	runner        CycleRunner
	snapshots     *cache.SnapshotCache
	subscribers   *hub.Hub
	enricher      ports.Enricher
	interval      time.Duration
	retryInterval time.Duration
	logger        *slog.Logger
	now           func() time.Time
	trigger       chan struct{}

	mu          sync.Mutex
	cycles      uint64
	lastSuccess time.Time
	lastError   string
}

// NewScheduler constructs the cycle scheduler with default intervals of one
// hour and a five-minute error backoff.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	if deps.Interval <= 0 {
		deps.Interval = defaultInterval
	}
	if deps.RetryInterval <= 0 {
		deps.RetryInterval = defaultRetryInterval
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Scheduler{
		runner:        deps.Runner,
		snapshots:     deps.Cache,
		subscribers:   deps.Hub,
		enricher:      deps.Enricher,
		interval:      deps.Interval,
		retryInterval: deps.RetryInterval,
		logger:        deps.Logger,
		now:           deps.Now,
		trigger:       make(chan struct{}, 1),
	}
}

// Run drives the cycle loop until ctx is cancelled. It never exits on cycle
// failure; a failed cycle shortens the wait before the next attempt.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := s.interval
		if err := s.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("cycle failed", "error", err)
			wait = s.retryInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-s.trigger:
			timer.Stop()
		}
	}
}

// TriggerNow requests an immediate additional cycle. Non-blocking; triggers
// arriving while one is already pending coalesce.
func (s *Scheduler) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// RunOnce executes a single cycle: run the pipeline, publish the snapshot,
// then broadcast articles, trending, and status in that order.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	snap, err := s.runner.RunCycle(ctx)
	if err != nil {
		s.record(func() { s.lastError = err.Error() })
		return fmt.Errorf("run cycle: %w", err)
	}

	published := s.snapshots.Publish(snap)
	s.subscribers.BroadcastArticles(published.Articles)
	s.subscribers.BroadcastTrending(published.Trending)

	online := s.enricher != nil && s.enricher.IsAvailable(ctx)
	s.subscribers.BroadcastStatus(hub.Status{
		EnricherOnline:    online,
		ArticlesProcessed: len(published.Articles),
		LastUpdate:        s.now(),
	})

	s.record(func() {
		s.cycles++
		s.lastSuccess = s.now()
		s.lastError = ""
	})

	s.logger.Info("cycle complete",
		"version", published.Version,
		"articles", len(published.Articles),
		"trending", len(published.Trending),
		"enricher_online", online,
		"subscribers", s.subscribers.Count())
	return nil
}

// Health reports liveness data for the background task.
func (s *Scheduler) Health() SchedulerHealth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerHealth{
		Cycles:      s.cycles,
		LastSuccess: s.lastSuccess,
		LastError:   s.lastError,
	}
}

func (s *Scheduler) record(update func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update()
}
