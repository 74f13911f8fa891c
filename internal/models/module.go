// Package models provides data model definitions for the edusync engine.
package models

// QuizQuestion is one question inside a module's embedded quiz.
type QuizQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
}

// Module is the full payload of a single learning module, cached whole for
// offline playback. Presence in the module cache is what the UI shows as
// "available offline".
type Module struct {
	ID         string         `json:"id"`
	CourseID   string         `json:"course_id"`
	Title      string         `json:"title"`
	VideoURL   string         `json:"video_url,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
	Quiz       []QuizQuestion `json:"quiz,omitempty"`
	SavedAt    int64          `json:"saved_at"`
}
