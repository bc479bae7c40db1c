package models

import "time"

// Evaluation groups observations for a client visit.
type Evaluation struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EvaluationDetail is an evaluation with its client and observations.
type EvaluationDetail struct {
	Evaluation
	Client       Client        `json:"client"`
	Observations []Observation `json:"observations"`
}

// CreateEvaluationRequest is the create payload.
type CreateEvaluationRequest struct {
	ClientID string `json:"client_id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,max=255"`
}
