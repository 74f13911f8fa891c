// Package models provides data model definitions for the edusync engine.
package models

// ModuleSummary is the ordered course-list view of a module. Position is the
// module's index within its course ordering and drives the locking rule.
type ModuleSummary struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// CourseSnapshot is a full denormalized course document cached for offline
// browsing. Snapshots are replaced wholesale on refresh, never merged.
type CourseSnapshot struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Professor   string          `json:"professor,omitempty"`
	Modules     []ModuleSummary `json:"modules"`
	FetchedAt   int64           `json:"fetched_at"`
}
