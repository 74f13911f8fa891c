// Package syncer provides the flush engine, the periodic sync scheduler and
// the per-topic retry helper that reconcile queued writes with the server.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/estrateji/edusync/internal/api"
	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/queue"
)

// endpoints maps each topic to its remote delivery path.
var endpoints = map[models.Topic]string{
	models.TopicExerciseSubmissions: "/offline/sync",
	models.TopicQuizSubmissions:     "/offline/sync",
	models.TopicMessages:            "/messages/sync",
}

// envelopeKeys wraps each delivery in the field name the backend expects.
var envelopeKeys = map[models.Topic]string{
	models.TopicExerciseSubmissions: "submissions",
	models.TopicQuizSubmissions:     "submissions",
	models.TopicMessages:            "messages",
}

// FlushResult summarizes one topic flush.
type FlushResult struct {
	Delivered   int
	Failed      int
	Quarantined int
}

// Warmer is notified after each refreshed course snapshot so the content
// cache can be warmed speculatively.
type Warmer interface {
	Warm(ctx context.Context, course *models.CourseSnapshot)
}

// Engine flushes pending queue items to their remote endpoints. A per-topic
// guard ensures the scheduler and any retry helper never flush the same topic
// concurrently, which is what bounds the duplicate-delivery risk client-side.
type Engine struct {
	store     *queue.Store
	validator *queue.Validator
	client    api.Client
	courses   *cache.CourseCache
	warmer    Warmer

	mu       sync.Mutex
	inFlight map[models.Topic]bool
}

// NewEngine creates an Engine.
func NewEngine(store *queue.Store, validator *queue.Validator, client api.Client, courses *cache.CourseCache) *Engine {
	return &Engine{
		store:     store,
		validator: validator,
		client:    client,
		courses:   courses,
		inFlight:  make(map[models.Topic]bool),
	}
}

// SetWarmer attaches the prefetch warmer. Call before Start.
func (e *Engine) SetWarmer(w Warmer) {
	e.warmer = w
}

// tryAcquire claims the topic's flush guard.
func (e *Engine) tryAcquire(topic models.Topic) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[topic] {
		return false
	}
	e.inFlight[topic] = true
	return true
}

func (e *Engine) release(topic models.Topic) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, topic)
}

// FlushTopic attempts delivery of every pending item of topic, in insertion
// order. Failure of one item never blocks or rolls back the others. Returns
// ok=false without touching the queue if the topic is already being flushed.
func (e *Engine) FlushTopic(ctx context.Context, topic models.Topic) (FlushResult, bool) {
	var res FlushResult
	if !e.tryAcquire(topic) {
		return res, false
	}
	defer e.release(topic)

	pending, err := e.store.ListPending(topic)
	if err != nil {
		logging.Error("list pending failed", err, logging.Fields{"topic": topic})
		return res, true
	}

	for _, item := range pending {
		select {
		case <-ctx.Done():
			return res, true
		default:
		}

		// Defense in depth: enqueue already validated, but queued state
		// can predate a rules change.
		if err := e.validator.Validate(topic, item.Payload); err != nil {
			if qerr := e.store.Quarantine(topic, item.ID, err.Error()); qerr != nil {
				logging.Error("quarantine failed", qerr, logging.Fields{"topic": topic, "id": item.ID})
				res.Failed++
				continue
			}
			res.Quarantined++
			continue
		}

		body := map[string]interface{}{
			envelopeKeys[topic]: []map[string]interface{}{item.Payload},
		}
		if err := e.client.Post(ctx, endpoints[topic], body); err != nil {
			// Transient: item stays pending, retried next cycle.
			logging.Warn("delivery failed", logging.Fields{
				"topic": topic,
				"id":    item.ID,
				"error": err.Error(),
			})
			res.Failed++
			continue
		}

		if err := e.store.MarkSynced(topic, item.ID); err != nil {
			logging.Error("mark synced failed", err, logging.Fields{"topic": topic, "id": item.ID})
			res.Failed++
			continue
		}
		res.Delivered++
	}

	if res.Delivered > 0 || res.Failed > 0 || res.Quarantined > 0 {
		logging.Info("topic flushed", logging.Fields{
			"topic":       topic,
			"delivered":   res.Delivered,
			"failed":      res.Failed,
			"quarantined": res.Quarantined,
		})
	}
	return res, true
}

// FlushAll flushes every topic. Topics whose guard is held are skipped, not
// waited on.
func (e *Engine) FlushAll(ctx context.Context) map[models.Topic]FlushResult {
	results := make(map[models.Topic]FlushResult, len(models.Topics()))
	for _, topic := range models.Topics() {
		if res, ok := e.FlushTopic(ctx, topic); ok {
			results[topic] = res
		}
	}
	return results
}

// RefreshCourses refreshes the course snapshot cache from the server: the
// course list first, then each course's full document. Per-course failures
// are logged and skipped; only a failed list fetch is returned.
func (e *Engine) RefreshCourses(ctx context.Context) error {
	var list []models.CourseSnapshot
	if err := e.client.Get(ctx, "/courses", &list); err != nil {
		return errors.Wrap(errors.ErrFetchFailed, "course list refresh", err)
	}

	refreshed := 0
	for _, c := range list {
		var full models.CourseSnapshot
		if err := e.client.Get(ctx, "/courses/"+c.ID, &full); err != nil {
			logging.Warn("course refresh failed", logging.Fields{"course_id": c.ID, "error": err.Error()})
			continue
		}
		full.FetchedAt = time.Now().Unix()
		if err := e.courses.Put(&full); err != nil {
			logging.Error("course cache write failed", err, logging.Fields{"course_id": c.ID})
			continue
		}
		refreshed++
		if e.warmer != nil {
			e.warmer.Warm(ctx, &full)
		}
	}

	logging.Debug("course snapshots refreshed", logging.Fields{"count": refreshed})
	return nil
}

// PendingCounts exposes queue depth per topic for the UI badge.
func (e *Engine) PendingCounts() map[models.Topic]int {
	return e.store.Counts()
}
