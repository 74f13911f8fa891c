// Package modstate derives each module's navigable state from the completion
// ledger, the course ordering and the offline content cache, and owns the
// save-offline action.
package modstate

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/estrateji/edusync/internal/api"
	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/storage"
)

const ledgerKey = "completed"

// Manager is the single source of truth the UI queries to decide what a
// module tile should show.
type Manager struct {
	kv       storage.KV
	modules  *cache.ModuleCache
	client   api.Client
	progress ProgressStore
	mu       sync.Mutex
}

// NewManager creates a Manager.
func NewManager(kv storage.KV, modules *cache.ModuleCache, client api.Client, progress ProgressStore) *Manager {
	return &Manager{
		kv:       kv,
		modules:  modules,
		client:   client,
		progress: progress,
	}
}

// Status derives the module's state from the ledger, the course ordering and
// the progress marker:
//   - completed: recorded in the ledger (absorbing, no transition leaves it)
//   - locked: not completed and the immediately preceding module in the
//     course ordering is not completed; the first module is never locked
//   - resume: unlocked with a partial-progress marker
//   - start: unlocked, no marker
func (m *Manager) Status(moduleID string, courseModules []models.ModuleSummary) models.ModuleStatus {
	ledger := m.CompletedMap()
	if ledger.Completed(moduleID) {
		return models.StatusCompleted
	}

	idx := -1
	for i, mod := range courseModules {
		if mod.ID == moduleID {
			idx = i
			break
		}
	}
	if idx > 0 && !ledger.Completed(courseModules[idx-1].ID) {
		return models.StatusLocked
	}

	if _, ok := m.progress.Progress(moduleID); ok {
		return models.StatusResume
	}
	return models.StatusStart
}

// MarkCompleted records the module as complete. Monotonic: re-marking keeps
// the original timestamp. The progress marker is cleared, resume is no
// longer meaningful.
func (m *Manager) MarkCompleted(moduleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger, err := m.loadLedger()
	if err != nil {
		return err
	}
	if ledger.Completed(moduleID) {
		return nil
	}
	ledger[moduleID] = time.Now().Unix()
	if err := m.saveLedger(ledger); err != nil {
		return err
	}

	m.progress.ClearProgress(moduleID)
	logging.Info("module completed", logging.Fields{"module_id": moduleID})
	return nil
}

// CompletedMap returns a snapshot of the completion ledger.
func (m *Manager) CompletedMap() models.CompletionLedger {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger, err := m.loadLedger()
	if err != nil {
		logging.Error("ledger read failed", err, nil)
		return models.CompletionLedger{}
	}
	return ledger
}

// CompletedIDs returns the ids of all completed modules, sorted.
func (m *Manager) CompletedIDs() []string {
	ledger := m.CompletedMap()
	ids := make([]string, 0, len(ledger))
	for id := range ledger {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResumeModule returns the first incomplete module of the course ordering,
// or nil when everything is complete.
func (m *Manager) ResumeModule(courseModules []models.ModuleSummary) *models.ModuleSummary {
	ledger := m.CompletedMap()
	for i := range courseModules {
		if !ledger.Completed(courseModules[i].ID) {
			mod := courseModules[i]
			return &mod
		}
	}
	return nil
}

// SaveResult is the outcome of a save-offline action. Callers branch on
// Success instead of handling a panic or thrown error.
type SaveResult struct {
	Success bool
	Err     error
}

// SaveOffline fetches the module's full payload if it is not already cached
// and writes it to the module cache.
func (m *Manager) SaveOffline(ctx context.Context, moduleID string) SaveResult {
	if m.modules.Has(moduleID) {
		return SaveResult{Success: true}
	}

	var full models.Module
	if err := m.client.Get(ctx, "/modules/"+moduleID, &full); err != nil {
		err = errors.Wrap(errors.ErrFetchFailed, "module fetch", err)
		logging.Error("save offline failed", err, logging.Fields{"module_id": moduleID})
		return SaveResult{Err: err}
	}
	full.SavedAt = time.Now().Unix()
	if err := m.modules.Put(&full); err != nil {
		logging.Error("save offline failed", err, logging.Fields{"module_id": moduleID})
		return SaveResult{Err: err}
	}

	logging.Info("module saved offline", logging.Fields{"module_id": moduleID, "title": full.Title})
	return SaveResult{Success: true}
}

// AvailableOffline reports whether the module is present in the content
// cache, driving the "Available Offline" badge.
func (m *Manager) AvailableOffline(moduleID string) bool {
	return m.modules.Has(moduleID)
}

// SaveProgress records a partial-progress marker (playback position).
func (m *Manager) SaveProgress(moduleID string, position float64) {
	m.progress.SaveProgress(moduleID, position)
}

// Progress returns the saved playback position, if any.
func (m *Manager) Progress(moduleID string) (float64, bool) {
	return m.progress.Progress(moduleID)
}

// ClearProgress removes the marker; the module reverts from resume to start.
func (m *Manager) ClearProgress(moduleID string) {
	m.progress.ClearProgress(moduleID)
}

func (m *Manager) loadLedger() (models.CompletionLedger, error) {
	data, ok, err := m.kv.Get(ledgerKey)
	if err != nil {
		return nil, err
	}
	ledger := models.CompletionLedger{}
	if !ok {
		return ledger, nil
	}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "corrupt completion ledger", err)
	}
	return ledger, nil
}

func (m *Manager) saveLedger(ledger models.CompletionLedger) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "encode completion ledger", err)
	}
	return m.kv.Set(ledgerKey, data)
}
