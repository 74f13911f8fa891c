// Package models provides data model definitions for the edusync engine.
package models

import "time"

// Topic identifies a category of queued write operation. Each topic has its
// own validation rules and remote endpoint.
type Topic string

const (
	TopicExerciseSubmissions Topic = "exercise-submissions"
	TopicQuizSubmissions     Topic = "quiz-submissions"
	TopicMessages            Topic = "messages"
)

// Topics returns the fixed set of known topics in flush order.
func Topics() []Topic {
	return []Topic{TopicExerciseSubmissions, TopicQuizSubmissions, TopicMessages}
}

// KnownTopic reports whether t is one of the fixed topics.
func KnownTopic(t Topic) bool {
	switch t {
	case TopicExerciseSubmissions, TopicQuizSubmissions, TopicMessages:
		return true
	}
	return false
}

// QueueItem represents a pending write operation captured while offline or as
// a first delivery attempt. Items are append-only per topic: an item is never
// removed while Synced is false, only its Synced flag is ever flipped.
type QueueItem struct {
	ID       string                 `json:"id"`
	Topic    Topic                  `json:"topic"`
	Payload  map[string]interface{} `json:"payload"`
	Synced   bool                   `json:"synced"`
	QueuedAt int64                  `json:"queued_at"`
}

// Time returns QueuedAt as time.Time.
func (i *QueueItem) Time() time.Time {
	return time.Unix(i.QueuedAt, 0)
}

// QuarantinedItem is a payload that failed structural validation. It is kept
// for inspection and never retried.
type QuarantinedItem struct {
	Topic         Topic                  `json:"topic"`
	Payload       map[string]interface{} `json:"payload"`
	Reason        string                 `json:"reason"`
	QuarantinedAt int64                  `json:"quarantined_at"`
}
