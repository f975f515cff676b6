// Package scheduler drives dashboard refresh cycles from a fixed interval,
// manual refreshes, period changes and visibility changes. At most one
// cycle runs at a time; triggers arriving while one is in flight are
// coalesced into a single follow-up cycle.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/vire-markets/internal/common"
	"github.com/bobmcallan/vire-markets/internal/config"
)

var (
	// ErrRefreshQueued is returned when a trigger was folded into the
	// follow-up of the cycle already in flight.
	ErrRefreshQueued = errors.New("refresh already in progress, queued")
	// ErrStopped is returned for triggers after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Refresher runs one refresh cycle and shows loading feedback.
type Refresher interface {
	// Refresh fetches, merges, caches, sorts and renders. initial is true
	// until the first cycle succeeds.
	Refresh(ctx context.Context, initial bool) error
	SetLoading(loading, refreshing bool)
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running        bool   `json:"running"`
	Pending        bool   `json:"pending"`
	Visible        bool   `json:"visible"`
	Initial        bool   `json:"initial"`
	IntervalActive bool   `json:"interval_active"`
	Interval       string `json:"interval"`
	Cycles         int    `json:"cycles"`
}

type cycle struct {
	reason string
	done   chan struct{}
	err    error
}

// Scheduler owns the refresh interval and serializes refresh cycles.
type Scheduler struct {
	refresher    Refresher
	logger       *common.Logger
	cron         *cron.Cron
	interval     time.Duration
	minLoading   time.Duration
	initialDelay time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	entry    cron.EntryID
	armed    bool
	visible  bool
	initial  bool
	stopped  bool
	current  *cycle
	next     *cycle
	cycles   int
	delayed  *time.Timer
	inflight sync.WaitGroup
}

// New creates a scheduler for the dashboard configuration.
func New(cfg config.DashboardConfig, refresher Refresher, logger *common.Logger) *Scheduler {
	return &Scheduler{
		refresher:    refresher,
		logger:       logger,
		cron:         cron.New(cron.WithLogger(cronLogger{logger: logger})),
		interval:     cfg.RefreshIntervalDuration(),
		minLoading:   cfg.MinLoadingDisplayDuration(),
		initialDelay: cfg.InitialRefreshDelayDuration(),
		now:          time.Now,
		sleep:        sleepContext,
		visible:      true,
		initial:      true,
		ctx:          context.Background(),
	}
}

// SetClock replaces the clock and sleeper used for the minimum loading
// display.
func (s *Scheduler) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration)) {
	s.now = now
	s.sleep = sleep
}

// Start begins scheduling. When the dashboard was rendered from a fresh
// cached snapshot the first refresh is a background refresh after a short
// delay; otherwise it is an initial load, run immediately.
func (s *Scheduler) Start(ctx context.Context, renderedFromCache bool) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.initial = !renderedFromCache
	err := s.armLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("interval", s.interval.String()).
		Bool("from_cache", renderedFromCache).
		Msg("Refresh scheduler started")

	if renderedFromCache {
		s.mu.Lock()
		s.delayed = time.AfterFunc(s.initialDelay, func() { _ = s.Trigger("background") })
		s.mu.Unlock()
		return nil
	}
	_ = s.Trigger("initial")
	return nil
}

// Stop halts the interval and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.delayed != nil {
		s.delayed.Stop()
	}
	s.disarmLocked()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.inflight.Wait()
	s.logger.Info().Msg("Refresh scheduler stopped")
}

// Trigger starts a refresh cycle without waiting for it.
func (s *Scheduler) Trigger(reason string) error {
	_, err := s.enqueue(reason)
	return err
}

// RefreshAndWait triggers a refresh and waits for the cycle that covers it.
func (s *Scheduler) RefreshAndWait(ctx context.Context, reason string) error {
	c, err := s.enqueue(reason)
	if err != nil && !errors.Is(err, ErrRefreshQueued) {
		return err
	}
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Manual handles the refresh control: refresh now and restart the interval
// so the next scheduled refresh is a full interval away.
func (s *Scheduler) Manual() error {
	err := s.Trigger("manual")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible && !s.stopped {
		s.disarmLocked()
		if armErr := s.armLocked(); armErr != nil {
			return armErr
		}
	}
	return err
}

// PeriodsChanged refreshes after a period selector change.
func (s *Scheduler) PeriodsChanged() error {
	return s.Trigger("periods")
}

// SetVisible handles page visibility. Hiding stops the interval; becoming
// visible again refreshes immediately and restarts it.
func (s *Scheduler) SetVisible(visible bool) error {
	s.mu.Lock()
	if s.visible == visible || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.visible = visible
	if !visible {
		s.disarmLocked()
		s.mu.Unlock()
		s.logger.Debug().Msg("Dashboard hidden, refresh interval stopped")
		return nil
	}
	s.mu.Unlock()

	s.logger.Debug().Msg("Dashboard visible, refreshing and restarting interval")
	err := s.Trigger("visible")

	s.mu.Lock()
	defer s.mu.Unlock()
	if armErr := s.armLocked(); armErr != nil {
		return armErr
	}
	return err
}

// Status reports the scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:        s.current != nil,
		Pending:        s.next != nil,
		Visible:        s.visible,
		Initial:        s.initial,
		IntervalActive: s.armed,
		Interval:       s.interval.String(),
		Cycles:         s.cycles,
	}
}

func (s *Scheduler) enqueue(reason string) (*cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStopped
	}

	if s.current != nil {
		if s.next == nil {
			s.next = &cycle{reason: reason, done: make(chan struct{})}
		}
		s.logger.Debug().Str("reason", reason).Str("running", s.current.reason).Msg("Refresh coalesced")
		return s.next, ErrRefreshQueued
	}

	c := &cycle{reason: reason, done: make(chan struct{})}
	s.current = c
	s.inflight.Add(1)
	go s.loop(c)
	return c, nil
}

// loop runs c, then any follow-up queued meanwhile.
func (s *Scheduler) loop(c *cycle) {
	defer s.inflight.Done()
	for c != nil {
		s.run(c)
		close(c.done)

		s.mu.Lock()
		c = s.next
		s.next = nil
		if c != nil && s.stopped {
			c.err = ErrStopped
			close(c.done)
			c = nil
		}
		s.current = c
		s.mu.Unlock()
	}
}

func (s *Scheduler) run(c *cycle) {
	s.mu.Lock()
	ctx := s.ctx
	initial := s.initial
	s.cycles++
	s.mu.Unlock()

	start := s.now()
	s.refresher.SetLoading(true, !initial)

	c.err = s.refresher.Refresh(ctx, initial)
	if c.err == nil {
		s.mu.Lock()
		s.initial = false
		s.mu.Unlock()
	} else {
		s.logger.Warn().Str("reason", c.reason).Str("error", c.err.Error()).Msg("Refresh cycle failed")
	}

	if remaining := s.minLoading - s.now().Sub(start); remaining > 0 {
		s.sleep(ctx, remaining)
	}
	s.refresher.SetLoading(false, false)

	s.logger.Debug().
		Str("reason", c.reason).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Refresh cycle complete")
}

// armLocked must be called with mu held.
func (s *Scheduler) armLocked() error {
	if s.armed || !s.visible {
		return nil
	}
	id, err := s.cron.AddFunc("@every "+s.interval.String(), func() { _ = s.Trigger("interval") })
	if err != nil {
		return fmt.Errorf("failed to schedule refresh interval: %w", err)
	}
	s.entry = id
	s.armed = true
	return nil
}

// disarmLocked must be called with mu held.
func (s *Scheduler) disarmLocked() {
	if !s.armed {
		return
	}
	s.cron.Remove(s.entry)
	s.armed = false
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
