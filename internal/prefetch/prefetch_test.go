package prefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/storage"
)

type fakeClient struct {
	mu    sync.Mutex
	docs  map[string]interface{}
	calls []string
}

func (f *fakeClient) Post(ctx context.Context, path string, body interface{}) error {
	return nil
}

func (f *fakeClient) Get(ctx context.Context, path string, out interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	doc, ok := f.docs[path]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("get %s: not found", path)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type fakeLedger struct {
	done map[string]int64
}

func (f *fakeLedger) CompletedMap() models.CompletionLedger {
	return models.CompletionLedger(f.done)
}

func courseOf(ids ...string) []models.ModuleSummary {
	course := make([]models.ModuleSummary, len(ids))
	for i, id := range ids {
		course[i] = models.ModuleSummary{ID: id, CourseID: "c-1", Position: i}
	}
	return course
}

func moduleDoc(id string) models.Module {
	return models.Module{ID: id, CourseID: "c-1", Title: "Module " + id}
}

// TestPrefetchWindow tests the bounded fetch window from the first
// incomplete module.
func TestPrefetchWindow(t *testing.T) {
	client := &fakeClient{docs: map[string]interface{}{
		"/modules/m2": moduleDoc("m2"),
		"/modules/m3": moduleDoc("m3"),
		"/modules/m4": moduleDoc("m4"),
	}}
	modules := cache.NewModuleCache(storage.NewMemory())
	ledger := &fakeLedger{done: map[string]int64{"m1": 1}}
	p := New(client, modules, ledger, 2)

	fetched := p.Prefetch(context.Background(), courseOf("m1", "m2", "m3", "m4"), 2)

	if fetched != 2 {
		t.Fatalf("expected 2 fetched, got %d", fetched)
	}
	if !modules.Has("m2") || !modules.Has("m3") {
		t.Error("expected the next two incomplete modules cached")
	}
	if modules.Has("m4") {
		t.Error("expected m4 outside the window")
	}
	if modules.Has("m1") {
		t.Error("expected completed m1 not prefetched")
	}
}

// TestPrefetchSkipsCached tests that already-cached modules do not count
// against the window.
func TestPrefetchSkipsCached(t *testing.T) {
	client := &fakeClient{docs: map[string]interface{}{
		"/modules/m2": moduleDoc("m2"),
	}}
	modules := cache.NewModuleCache(storage.NewMemory())
	modules.Put(&models.Module{ID: "m1", CourseID: "c-1"})
	p := New(client, modules, &fakeLedger{}, 2)

	fetched := p.Prefetch(context.Background(), courseOf("m1", "m2"), 2)

	if fetched != 1 {
		t.Fatalf("expected 1 fetched, got %d", fetched)
	}
	for _, call := range client.calls {
		if call == "/modules/m1" {
			t.Error("expected cached m1 never refetched")
		}
	}
}

// TestPrefetchFailuresAreSilent tests that fetch failures are swallowed, not
// surfaced: prefetch is a speculative optimization.
func TestPrefetchFailuresAreSilent(t *testing.T) {
	client := &fakeClient{docs: map[string]interface{}{
		"/modules/m2": moduleDoc("m2"),
	}}
	modules := cache.NewModuleCache(storage.NewMemory())
	p := New(client, modules, &fakeLedger{}, 3)

	// m1 fetch fails; m2 still gets cached.
	fetched := p.Prefetch(context.Background(), courseOf("m1", "m2"), 3)

	if fetched != 1 {
		t.Fatalf("expected 1 fetched despite failure, got %d", fetched)
	}
	if !modules.Has("m2") {
		t.Error("expected m2 cached after m1 failure")
	}
}

// TestPrefetchNoWork tests the degenerate inputs.
func TestPrefetchNoWork(t *testing.T) {
	p := New(&fakeClient{}, cache.NewModuleCache(storage.NewMemory()), &fakeLedger{}, 2)

	if got := p.Prefetch(context.Background(), nil, 2); got != 0 {
		t.Errorf("expected 0 for empty list, got %d", got)
	}
	if got := p.Prefetch(context.Background(), courseOf("m1"), 0); got != 0 {
		t.Errorf("expected 0 for zero count, got %d", got)
	}
}

// TestWarmUsesDefaultCount tests the course-refresh warmer entry point.
func TestWarmUsesDefaultCount(t *testing.T) {
	client := &fakeClient{docs: map[string]interface{}{
		"/modules/m1": moduleDoc("m1"),
		"/modules/m2": moduleDoc("m2"),
		"/modules/m3": moduleDoc("m3"),
	}}
	modules := cache.NewModuleCache(storage.NewMemory())
	p := New(client, modules, &fakeLedger{}, 2)

	p.Warm(context.Background(), &models.CourseSnapshot{
		ID:      "c-1",
		Modules: courseOf("m1", "m2", "m3"),
	})

	if !modules.Has("m1") || !modules.Has("m2") {
		t.Error("expected default window cached")
	}
	if modules.Has("m3") {
		t.Error("expected m3 outside the default window")
	}
}
