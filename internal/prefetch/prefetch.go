// Package prefetch speculatively warms the module content cache so the next
// modules a learner will reach are already available offline.
package prefetch

import (
	"context"
	"time"

	"github.com/estrateji/edusync/internal/api"
	"github.com/estrateji/edusync/internal/cache"
	"github.com/estrateji/edusync/internal/logging"
	"github.com/estrateji/edusync/internal/models"
)

// CompletionSource exposes the completion ledger the prefetcher consults to
// find where the learner currently is in a course.
type CompletionSource interface {
	CompletedMap() models.CompletionLedger
}

// Prefetcher fetches and caches upcoming modules. It is a speculative
// optimization: every failure is logged, never surfaced to the user.
type Prefetcher struct {
	client       api.Client
	modules      *cache.ModuleCache
	completed    CompletionSource
	defaultCount int
}

// New creates a Prefetcher. defaultCount is the window used when the
// prefetcher runs as the course-refresh warmer.
func New(client api.Client, modules *cache.ModuleCache, completed CompletionSource, defaultCount int) *Prefetcher {
	return &Prefetcher{
		client:       client,
		modules:      modules,
		completed:    completed,
		defaultCount: defaultCount,
	}
}

// Warm prefetches the default window for a freshly refreshed course.
func (p *Prefetcher) Warm(ctx context.Context, course *models.CourseSnapshot) {
	p.Prefetch(ctx, course.Modules, p.defaultCount)
}

// Prefetch caches up to count modules from courseModules that are not cached
// yet, starting from the first incomplete module. Returns how many modules
// were actually fetched, for logging and tests only.
func (p *Prefetcher) Prefetch(ctx context.Context, courseModules []models.ModuleSummary, count int) int {
	if count <= 0 || len(courseModules) == 0 {
		return 0
	}

	ledger := p.completed.CompletedMap()
	start := 0
	for i, m := range courseModules {
		if !ledger.Completed(m.ID) {
			start = i
			break
		}
	}

	fetched := 0
	for _, m := range courseModules[start:] {
		if fetched >= count {
			break
		}
		if ledger.Completed(m.ID) || p.modules.Has(m.ID) {
			continue
		}

		var full models.Module
		if err := p.client.Get(ctx, "/modules/"+m.ID, &full); err != nil {
			logging.Warn("prefetch fetch failed", logging.Fields{
				"module_id": m.ID,
				"error":     err.Error(),
			})
			continue
		}
		full.SavedAt = time.Now().Unix()
		if err := p.modules.Put(&full); err != nil {
			logging.Error("prefetch cache write failed", err, logging.Fields{"module_id": m.ID})
			continue
		}
		fetched++
		logging.Debug("module prefetched", logging.Fields{"module_id": m.ID, "title": full.Title})
	}
	return fetched
}
