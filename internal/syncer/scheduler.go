package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/netmon"
)

// DefaultSyncInterval is the reference cadence of the global scheduler.
const DefaultSyncInterval = 15 * time.Second

// Scheduler drives periodic flushes while online. It is an owned, injectable
// component with an explicit lifecycle; tests drive Tick directly instead of
// waiting on the real timer.
type Scheduler struct {
	engine   *Engine
	monitor  *netmon.Monitor
	interval time.Duration

	mu       sync.Mutex
	running  bool
	flushing bool
	lastSync time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler. A non-positive interval falls back to
// DefaultSyncInterval.
func NewScheduler(engine *Engine, monitor *netmon.Monitor, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{
		engine:   engine,
		monitor:  monitor,
		interval: interval,
	}
}

// Start begins the tick loop. Safe to call once per lifecycle.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("sync scheduler started", logging.Fields{"interval": s.interval.String()})
}

// Stop halts the tick loop and waits for an in-flight tick to finish. No
// in-flight remote call is forcibly aborted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	logging.Info("sync scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one sync cycle: skip when offline, skip when a prior cycle is
// still flushing, otherwise flush every topic and then refresh the course
// snapshots best-effort. Errors never escape; the loop survives for the
// process lifetime. The manual "force sync now" trigger calls this same
// method, not a separate code path.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.monitor.IsOnline() {
		logging.Debug("tick skipped, offline", nil)
		return false
	}

	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		logging.Debug("tick skipped, flush in progress", nil)
		return false
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	results := s.engine.FlushAll(ctx)

	pending := 0
	for _, res := range results {
		pending += res.Failed
	}
	logging.Debug("flush cycle finished", logging.Fields{"still_pending": pending})

	// Course refresh is independent of queue results.
	if err := s.engine.RefreshCourses(ctx); err != nil {
		logging.Warn("course refresh skipped", logging.Fields{"error": err.Error()})
	}

	s.mu.Lock()
	s.lastSync = time.Now()
	s.mu.Unlock()
	return true
}

// SyncNow triggers an immediate cycle through the same path as the periodic
// tick. Returns false if the cycle was skipped (offline or already flushing).
func (s *Scheduler) SyncNow(ctx context.Context) bool {
	return s.Tick(ctx)
}

// Status is the scheduler state surfaced to the UI.
type Status struct {
	Running  bool
	Online   bool
	Flushing bool
	LastSync *time.Time
	Pending  map[models.Topic]int
}

// Status reports the current scheduler state and queue depths.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{
		Running:  s.running,
		Flushing: s.flushing,
	}
	if !s.lastSync.IsZero() {
		t := s.lastSync
		st.LastSync = &t
	}
	s.mu.Unlock()

	st.Online = s.monitor.IsOnline()
	st.Pending = s.engine.PendingCounts()
	return st
}
