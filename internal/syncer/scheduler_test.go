package syncer

import (
	"context"
	"testing"

	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/netmon"
	"github.com/estrateji/edusync/internal/queue"
	"github.com/estrateji/edusync/internal/storage"
)

func newTestScheduler(client *fakeClient, online bool) (*Scheduler, *queue.Store, *netmon.Monitor) {
	mem := storage.NewMemory()
	validator := queue.NewValidator()
	store := queue.NewStore(mem, validator)
	engine := NewEngine(store, validator, client, cache.NewCourseCache(mem))
	monitor := netmon.NewMonitor(online)
	return NewScheduler(engine, monitor, DefaultSyncInterval), store, monitor
}

// TestSchedulerSkipsTickOffline tests that an offline tick is a no-op.
func TestSchedulerSkipsTickOffline(t *testing.T) {
	client := &fakeClient{}
	s, store, _ := newTestScheduler(client, false)

	store.Enqueue(models.TopicExerciseSubmissions, submission(7))

	if s.Tick(context.Background()) {
		t.Error("expected offline tick to be skipped")
	}
	if client.postCount() != 0 {
		t.Errorf("expected no deliveries while offline, got %d", client.postCount())
	}

	pending, _ := store.ListPending(models.TopicExerciseSubmissions)
	if len(pending) != 1 {
		t.Errorf("expected item still pending, got %d", len(pending))
	}
}

// TestSchedulerReentrancyGuard tests that a tick is skipped while a prior
// tick's flush has not finished.
func TestSchedulerReentrancyGuard(t *testing.T) {
	client := &fakeClient{blockCh: make(chan struct{})}
	s, store, _ := newTestScheduler(client, true)

	store.Enqueue(models.TopicMessages, map[string]interface{}{
		"recipientId": "u-1", "content": "hi",
	})

	done := make(chan struct{})
	go func() {
		s.Tick(context.Background())
		close(done)
	}()

	// Wait for the first tick to take the flushing guard.
	for {
		s.mu.Lock()
		flushing := s.flushing
		s.mu.Unlock()
		if flushing {
			break
		}
	}

	if s.Tick(context.Background()) {
		t.Error("expected overlapping tick to be skipped")
	}

	close(client.blockCh)
	<-done
}

// TestSchedulerEndToEnd tests the full reconnect scenario: enqueue offline,
// go online, tick, exactly one post, pending empty.
func TestSchedulerEndToEnd(t *testing.T) {
	client := &fakeClient{getDocs: map[string]interface{}{
		"/courses": []models.CourseSnapshot{},
	}}
	s, store, monitor := newTestScheduler(client, false)

	payload := map[string]interface{}{
		"type": "exercise",
		"id":   7,
		"answers": []interface{}{
			map[string]interface{}{"qid": 1, "value": "A"},
		},
	}
	if _, err := store.Enqueue(models.TopicExerciseSubmissions, payload); err != nil {
		t.Fatalf("offline enqueue failed: %v", err)
	}

	// Still offline: nothing delivered.
	s.Tick(context.Background())
	if client.postCount() != 0 {
		t.Fatalf("expected no posts while offline, got %d", client.postCount())
	}

	monitor.Set(true)

	if !s.Tick(context.Background()) {
		t.Fatal("expected online tick to run")
	}
	if client.postCount() != 1 {
		t.Fatalf("expected exactly one post, got %d", client.postCount())
	}

	env := client.posts[0].body.(map[string]interface{})
	sent := env["submissions"].([]map[string]interface{})[0]
	if sent["type"] != "exercise" || sent["id"] != float64(7) {
		t.Errorf("unexpected delivered payload: %+v", sent)
	}

	pending, _ := store.ListPending(models.TopicExerciseSubmissions)
	if len(pending) != 0 {
		t.Errorf("expected pending empty after sync, got %d", len(pending))
	}
}

// TestSchedulerSyncNowSharesTickPath tests that the manual trigger uses the
// same flush logic as the periodic tick.
func TestSchedulerSyncNowSharesTickPath(t *testing.T) {
	client := &fakeClient{getDocs: map[string]interface{}{
		"/courses": []models.CourseSnapshot{},
	}}
	s, store, _ := newTestScheduler(client, true)

	store.Enqueue(models.TopicMessages, map[string]interface{}{
		"recipientId": "u-2", "content": "ping",
	})

	if !s.SyncNow(context.Background()) {
		t.Fatal("expected SyncNow to run")
	}
	if client.postCount() != 1 {
		t.Errorf("expected 1 delivery via SyncNow, got %d", client.postCount())
	}

	st := s.Status()
	if st.LastSync == nil {
		t.Error("expected lastSync recorded")
	}
	if st.Pending[models.TopicMessages] != 0 {
		t.Errorf("expected no pending messages, got %d", st.Pending[models.TopicMessages])
	}
}

// TestSchedulerStatus tests the badge surface while items are queued.
func TestSchedulerStatus(t *testing.T) {
	client := &fakeClient{}
	s, store, _ := newTestScheduler(client, false)

	store.Enqueue(models.TopicMessages, map[string]interface{}{
		"recipientId": "u-1", "content": "hi",
	})

	st := s.Status()
	if st.Online {
		t.Error("expected status offline")
	}
	if st.Running {
		t.Error("expected scheduler not running before Start")
	}
	if st.Pending[models.TopicMessages] != 1 {
		t.Errorf("expected 1 pending message, got %d", st.Pending[models.TopicMessages])
	}
}
