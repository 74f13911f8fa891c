// Package models provides data model definitions for the edusync engine.
package models

// CompletionLedger maps module id to completion timestamp (unix seconds).
// The ledger is monotonic: a module, once marked complete, stays complete.
type CompletionLedger map[string]int64

// Completed reports whether the ledger records the module as complete.
func (l CompletionLedger) Completed(moduleID string) bool {
	_, ok := l[moduleID]
	return ok
}

// ModuleStatus is the derived, navigable state of a module tile.
type ModuleStatus string

const (
	StatusLocked    ModuleStatus = "locked"
	StatusStart     ModuleStatus = "start"
	StatusResume    ModuleStatus = "resume"
	StatusCompleted ModuleStatus = "completed"
)
