package queue

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/models"
)

// Validator performs the per-topic structural shape check. Malformed client
// state (partial form fills, version skew) must never be retried against a
// server that will reject it forever.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator with the fixed per-topic rules.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// answerRecord is one entry of a submission's ordered answers sequence.
type answerRecord struct {
	QuestionID int         `json:"qid" validate:"required"`
	Value      interface{} `json:"value" validate:"required"`
}

// submissionPayload covers the exercise and quiz submission topics.
type submissionPayload struct {
	Type    string         `json:"type" validate:"required"`
	ID      int            `json:"id" validate:"required"`
	Answers []answerRecord `json:"answers" validate:"required,min=1,dive"`
}

// messagePayload covers the messages topic.
type messagePayload struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// Validate checks payload against the rules for topic. A nil return means
// the payload may be enqueued and delivered.
func (va *Validator) Validate(topic models.Topic, payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(errors.ErrValidation, "payload not encodable", err)
	}

	switch topic {
	case models.TopicExerciseSubmissions, models.TopicQuizSubmissions:
		var p submissionPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return errors.Wrap(errors.ErrValidation, "malformed submission payload", err)
		}
		if err := va.v.Struct(p); err != nil {
			return errors.Wrap(errors.ErrValidation, "submission payload incomplete", err)
		}
	case models.TopicMessages:
		var p messagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return errors.Wrap(errors.ErrValidation, "malformed message payload", err)
		}
		if err := va.v.Struct(p); err != nil {
			return errors.Wrap(errors.ErrValidation, "message payload incomplete", err)
		}
	default:
		return errors.New(errors.ErrUnknownTopic, fmt.Sprintf("unknown topic %q", topic))
	}
	return nil
}
