// Package cache provides the offline content caches: whole-document course
// snapshots and full module payloads over the persistent KV store.
package cache

import (
	"encoding/json"
	"strings"

	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/storage"
)

// docStore is a snapshot store under one key prefix. Writes replace the whole
// document; there is no field-level merge and no automatic eviction.
type docStore struct {
	kv     storage.KV
	prefix string
}

func (d docStore) key(id string) string {
	return d.prefix + id
}

func (d docStore) put(id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCacheWrite, "encode document", err)
	}
	if err := d.kv.Set(d.key(id), data); err != nil {
		return errors.Wrap(errors.ErrCacheWrite, "persist document", err)
	}
	return nil
}

// get decodes the document for id into out. Absence is reported via the
// bool, never as an error.
func (d docStore) get(id string, out interface{}) (bool, error) {
	data, ok, err := d.kv.Get(d.key(id))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrap(errors.ErrStorage, "corrupt cached document", err)
	}
	return true, nil
}

func (d docStore) has(id string) bool {
	_, ok, err := d.kv.Get(d.key(id))
	return err == nil && ok
}

func (d docStore) keys() ([]string, error) {
	keys, err := d.kv.Keys(d.prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, d.prefix))
	}
	return ids, nil
}

// clear removes every document under the prefix. Only the explicit
// user-triggered cache wipe calls this.
func (d docStore) clear() error {
	keys, err := d.kv.Keys(d.prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := d.kv.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
