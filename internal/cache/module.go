package cache

import (
	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/storage"
)

// ModuleCache stores full module payloads keyed by module id. Presence here
// is what the UI shows as "available offline". Re-saving replaces the whole
// record.
type ModuleCache struct {
	s docStore
}

// NewModuleCache creates a ModuleCache over kv.
func NewModuleCache(kv storage.KV) *ModuleCache {
	return &ModuleCache{s: docStore{kv: kv, prefix: "modules:"}}
}

// Put replaces the cached payload for module.ID wholesale.
func (c *ModuleCache) Put(module *models.Module) error {
	if module == nil || module.ID == "" {
		return errors.New(errors.ErrInvalid, "module must have an id")
	}
	return c.s.put(module.ID, module)
}

// Get returns the cached module, with found=false on a missing id.
func (c *ModuleCache) Get(moduleID string) (*models.Module, bool, error) {
	var module models.Module
	ok, err := c.s.get(moduleID, &module)
	if !ok || err != nil {
		return nil, false, err
	}
	return &module, true, nil
}

// Has reports whether moduleID is available offline.
func (c *ModuleCache) Has(moduleID string) bool {
	return c.s.has(moduleID)
}

// Keys returns the ids of all cached modules.
func (c *ModuleCache) Keys() ([]string, error) {
	return c.s.keys()
}

// Clear wipes all cached modules. User-triggered only.
func (c *ModuleCache) Clear() error {
	return c.s.clear()
}
