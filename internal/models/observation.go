package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// ObservationResponses maps observation question ids to the selected option label.
type ObservationResponses map[string]string

// Value implements driver.Valuer.
func (r ObservationResponses) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(r))
}

// Scan implements sql.Scanner.
func (r *ObservationResponses) Scan(src interface{}) error {
	raw, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan observation responses: %w", err)
	}
	out := ObservationResponses{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("scan observation responses: %w", err)
		}
	}
	*r = out
	return nil
}

// Observation is a filled observation template attached to an evaluation.
type Observation struct {
	ID              string               `db:"id" json:"id"`
	UserID          string               `db:"user_id" json:"user_id"`
	EvaluationID    string               `db:"evaluation_id" json:"evaluation_id"`
	ObservationType string               `db:"observation_type" json:"observation_type"`
	Responses       ObservationResponses `db:"responses" json:"responses"`
	Notes           *string              `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// ObservationPatch is a partial update; nil fields are left unchanged.
type ObservationPatch struct {
	Responses ObservationResponses
	Notes     *string
}

// CreateObservationRequest is the create payload.
type CreateObservationRequest struct {
	EvaluationID    string               `json:"evaluation_id" validate:"required,uuid"`
	ObservationType string               `json:"observation_type" validate:"required"`
	Responses       ObservationResponses `json:"responses" validate:"required"`
	Notes           *string              `json:"notes" validate:"omitempty,max=10000"`
}

// UpdateObservationRequest is the patch payload.
type UpdateObservationRequest struct {
	Responses ObservationResponses `json:"responses"`
	Notes     *string              `json:"notes" validate:"omitempty,max=10000"`
}
