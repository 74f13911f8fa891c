package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/estrateji/edusync/internal/logging"
)

const (
	pingInterval     = 20 * time.Second
	pongWait         = 30 * time.Second
	maxReconnectWait = 2 * time.Minute
)

// Heartbeat keeps a websocket connection to the portal and drives a Monitor
// from its lifecycle: connected means online, a dial or read failure means
// offline. Reconnect attempts back off up to maxReconnectWait.
type Heartbeat struct {
	url     string
	monitor *Monitor
	dialer  *websocket.Dialer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewHeartbeat creates a Heartbeat for the given websocket URL.
func NewHeartbeat(url string, monitor *Monitor) *Heartbeat {
	return &Heartbeat{
		url:     url,
		monitor: monitor,
		dialer:  websocket.DefaultDialer,
	}
}

// Start begins the connect loop.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.mu.Unlock()

	h.wg.Add(1)
	go h.loop(ctx)
}

// Stop tears down the connect loop.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stopCh)
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *Heartbeat) loop(ctx context.Context) {
	defer h.wg.Done()

	wait := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		default:
		}

		if err := h.connect(ctx); err != nil {
			h.monitor.Set(false)
			logging.Debug("heartbeat connect failed", logging.Fields{
				"url":   h.url,
				"error": err.Error(),
				"retry": wait.String(),
			})

			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case <-time.After(wait):
			}
			wait *= 2
			if wait > maxReconnectWait {
				wait = maxReconnectWait
			}
			continue
		}
		// Connection held and then dropped; retry promptly.
		wait = time.Second
	}
}

// connect dials the heartbeat endpoint and holds the connection until it
// drops. Returns the dial error, or nil after a held connection is lost.
func (h *Heartbeat) connect(ctx context.Context) error {
	conn, _, err := h.dialer.DialContext(ctx, h.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.monitor.Set(true)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// Drain frames; any read error ends the connection.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.stopCh:
			return nil
		case <-done:
			h.monitor.Set(false)
			return nil
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.monitor.Set(false)
				return nil
			}
		}
	}
}
