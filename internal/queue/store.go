// Package queue provides the durable, per-topic store of pending write
// operations and the structural validator that guards it.
package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/storage"
)

// Store is the durable queue. Each topic persists as one ordered list; an
// item is never removed while unsynced. Synced items are pruned the next time
// the topic's list is rewritten by an enqueue.
type Store struct {
	kv        storage.KV
	validator *Validator
	mu        sync.Mutex
}

// NewStore creates a Store over kv.
func NewStore(kv storage.KV, validator *Validator) *Store {
	return &Store{kv: kv, validator: validator}
}

func queueKey(topic models.Topic) string {
	return "queue:" + string(topic)
}

func quarantineKey(topic models.Topic) string {
	return "quarantine:" + string(topic)
}

// Enqueue validates payload and appends it to topic's persisted list. A
// payload failing validation is quarantined, never enqueued. A storage
// failure is surfaced to the caller: the submission could not be queued at
// all, which the UI must report as distinct from queued-but-pending.
func (s *Store) Enqueue(topic models.Topic, payload map[string]interface{}) (*models.QueueItem, error) {
	if !models.KnownTopic(topic) {
		return nil, errors.New(errors.ErrUnknownTopic, fmt.Sprintf("unknown topic %q", topic))
	}

	if err := s.validator.Validate(topic, payload); err != nil {
		s.quarantine(topic, payload, err.Error())
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(topic)
	if err != nil {
		return nil, err
	}

	item := models.QueueItem{
		ID:       uuid.NewString(),
		Topic:    topic,
		Payload:  payload,
		Synced:   false,
		QueuedAt: time.Now().Unix(),
	}

	// Rewrite prunes items synced since the last write.
	kept := items[:0]
	for _, it := range items {
		if !it.Synced {
			kept = append(kept, it)
		}
	}
	kept = append(kept, item)

	if err := s.save(topic, kept); err != nil {
		return nil, err
	}

	logging.Debug("enqueued item", logging.Fields{"topic": topic, "id": item.ID})
	return &item, nil
}

// ListPending returns all unsynced items of topic in insertion order. Order
// is significant: flushes must preserve it to avoid reordering threads.
func (s *Store) ListPending(topic models.Topic) ([]models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(topic)
	if err != nil {
		return nil, err
	}
	var pending []models.QueueItem
	for _, it := range items {
		if !it.Synced {
			pending = append(pending, it)
		}
	}
	return pending, nil
}

// MarkSynced flips the item's flag and persists. Idempotent: marking an
// already-synced or already-pruned item is a no-op.
func (s *Store) MarkSynced(topic models.Topic, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(topic)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == id {
			if items[i].Synced {
				return nil
			}
			items[i].Synced = true
			return s.save(topic, items)
		}
	}
	return nil
}

// Snapshot returns topic's full list, including items synced but not yet
// pruned. Used for UI badges and debug views.
func (s *Store) Snapshot(topic models.Topic) ([]models.QueueItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(topic)
}

// PendingCount returns the number of unsynced items for topic.
func (s *Store) PendingCount(topic models.Topic) (int, error) {
	pending, err := s.ListPending(topic)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// Counts returns pending counts per topic for the "N items syncing" badge.
func (s *Store) Counts() map[models.Topic]int {
	counts := make(map[models.Topic]int, len(models.Topics()))
	for _, topic := range models.Topics() {
		n, err := s.PendingCount(topic)
		if err != nil {
			logging.Error("pending count failed", err, logging.Fields{"topic": topic})
			continue
		}
		counts[topic] = n
	}
	return counts
}

// Quarantine moves a pending item out of topic's list into the quarantine
// store. Used by the flush path when an item that slipped past enqueue-time
// validation turns out malformed.
func (s *Store) Quarantine(topic models.Topic, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(topic)
	if err != nil {
		return err
	}
	var removed *models.QueueItem
	kept := make([]models.QueueItem, 0, len(items))
	for i := range items {
		if items[i].ID == id {
			r := items[i]
			removed = &r
			continue
		}
		kept = append(kept, items[i])
	}
	if removed == nil {
		return nil
	}
	if err := s.save(topic, kept); err != nil {
		return err
	}
	s.quarantine(topic, removed.Payload, reason)
	return nil
}

// Quarantined returns topic's quarantined items for inspection. They are
// never retried and never silently dropped.
func (s *Store) Quarantined(topic models.Topic) ([]models.QuarantinedItem, error) {
	data, ok, err := s.kv.Get(quarantineKey(topic))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []models.QuarantinedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "corrupt quarantine list", err)
	}
	return items, nil
}

// quarantine appends a malformed payload to topic's quarantine list. Failures
// here are logged, not propagated: the caller already has the primary error.
func (s *Store) quarantine(topic models.Topic, payload map[string]interface{}, reason string) {
	items, err := s.Quarantined(topic)
	if err != nil {
		logging.Error("quarantine read failed", err, logging.Fields{"topic": topic})
		return
	}
	items = append(items, models.QuarantinedItem{
		Topic:         topic,
		Payload:       payload,
		Reason:        reason,
		QuarantinedAt: time.Now().Unix(),
	})
	data, err := json.Marshal(items)
	if err != nil {
		logging.Error("quarantine encode failed", err, logging.Fields{"topic": topic})
		return
	}
	if err := s.kv.Set(quarantineKey(topic), data); err != nil {
		logging.Error("quarantine write failed", err, logging.Fields{"topic": topic})
		return
	}
	logging.Warn("payload quarantined", logging.Fields{"topic": topic, "reason": reason})
}

func (s *Store) load(topic models.Topic) ([]models.QueueItem, error) {
	data, ok, err := s.kv.Get(queueKey(topic))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []models.QueueItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "corrupt queue list", err)
	}
	return items, nil
}

func (s *Store) save(topic models.Topic, items []models.QueueItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "encode queue list", err)
	}
	if err := s.kv.Set(queueKey(topic), data); err != nil {
		if errors.Is(err, errors.ErrStorageFull) {
			return err
		}
		return errors.Wrap(errors.ErrStorage, "persist queue list", err)
	}
	return nil
}
