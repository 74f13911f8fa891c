package modstate

import (
	"encoding/json"

	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/storage"
)

// ProgressStore holds partial-progress markers (saved playback positions).
// The status derivation only consults presence; the marker value is the
// position handed back to the player on resume.
type ProgressStore interface {
	// Progress returns the saved position, with found=false when no marker
	// exists.
	Progress(moduleID string) (float64, bool)

	// SaveProgress records a position for moduleID.
	SaveProgress(moduleID string, position float64)

	// ClearProgress removes the marker, e.g. on replay from scratch or on
	// completion.
	ClearProgress(moduleID string)
}

// kvProgress persists markers in the KV store under one key per module.
type kvProgress struct {
	kv storage.KV
}

// NewProgressStore creates the persistent ProgressStore.
func NewProgressStore(kv storage.KV) ProgressStore {
	return &kvProgress{kv: kv}
}

func progressKey(moduleID string) string {
	return "progress:" + moduleID
}

func (p *kvProgress) Progress(moduleID string) (float64, bool) {
	data, ok, err := p.kv.Get(progressKey(moduleID))
	if err != nil || !ok {
		return 0, false
	}
	var pos float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return 0, false
	}
	return pos, true
}

func (p *kvProgress) SaveProgress(moduleID string, position float64) {
	data, _ := json.Marshal(position)
	if err := p.kv.Set(progressKey(moduleID), data); err != nil {
		logging.Error("progress write failed", err, logging.Fields{"module_id": moduleID})
	}
}

func (p *kvProgress) ClearProgress(moduleID string) {
	if err := p.kv.Delete(progressKey(moduleID)); err != nil {
		logging.Error("progress clear failed", err, logging.Fields{"module_id": moduleID})
	}
}
