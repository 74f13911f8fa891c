package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/netmon"
)

// maxRetryBackoff caps the helper's backoff between failed attempts.
const maxRetryBackoff = 5 * time.Minute

// RetryHelper flushes a single topic on its own cadence, plus immediately on
// the offline-to-online transition. Dashboard components that need delivery
// faster than the global scheduler own one of these. It shares the engine's
// per-topic guard with the scheduler, so the two never flush the same topic
// concurrently.
type RetryHelper struct {
	engine   *Engine
	monitor  *netmon.Monitor
	topic    models.Topic
	interval time.Duration

	mu          sync.Mutex
	running     bool
	failures    int
	nextAttempt time.Time
	stopCh      chan struct{}
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewRetryHelper creates a helper for one topic with its own tick interval.
func NewRetryHelper(engine *Engine, monitor *netmon.Monitor, topic models.Topic, interval time.Duration) *RetryHelper {
	return &RetryHelper{
		engine:   engine,
		monitor:  monitor,
		topic:    topic,
		interval: interval,
	}
}

// Start begins the helper's timer and reconnect subscription.
func (h *RetryHelper) Start(ctx context.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.mu.Unlock()

	h.unsubscribe = h.monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		// Reconnect resets backoff; deliver as soon as we are back.
		h.mu.Lock()
		h.failures = 0
		h.nextAttempt = time.Time{}
		h.mu.Unlock()
		h.Attempt(ctx)
	})

	h.wg.Add(1)
	go h.loop(ctx)

	logging.Info("retry helper started", logging.Fields{
		"topic":    h.topic,
		"interval": h.interval.String(),
	})
}

// Stop halts the helper.
func (h *RetryHelper) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stopCh)
	h.mu.Unlock()

	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.wg.Wait()
}

func (h *RetryHelper) loop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.Attempt(ctx)
		}
	}
}

// Attempt flushes the helper's topic if online and not backing off. Failed
// attempts back off exponentially (capped); items themselves always remain
// pending, never dropped. Returns whether a flush ran.
func (h *RetryHelper) Attempt(ctx context.Context) bool {
	if !h.monitor.IsOnline() {
		return false
	}

	h.mu.Lock()
	if !h.nextAttempt.IsZero() && time.Now().Before(h.nextAttempt) {
		h.mu.Unlock()
		return false
	}
	h.mu.Unlock()

	res, ok := h.engine.FlushTopic(ctx, h.topic)
	if !ok {
		// Another flush path holds the topic; its result will cover us.
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if res.Failed > 0 {
		h.failures++
		h.nextAttempt = time.Now().Add(backoff(h.failures, h.interval))
		logging.Debug("retry helper backing off", logging.Fields{
			"topic":    h.topic,
			"failures": h.failures,
			"until":    h.nextAttempt.Format(time.RFC3339),
		})
	} else {
		h.failures = 0
		h.nextAttempt = time.Time{}
	}
	return true
}

// backoff returns base * 2^(failures-1), capped at maxRetryBackoff.
func backoff(failures int, base time.Duration) time.Duration {
	d := base
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	if d > maxRetryBackoff {
		d = maxRetryBackoff
	}
	return d
}
