package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ot-practice-api/internal/models"
)

const observationColumns = `id, user_id, evaluation_id, observation_type, responses, notes, created_at, updated_at`

// ObservationRepository persists observations.
type ObservationRepository struct {
	db *sqlx.DB
}

// NewObservationRepository constructs an ObservationRepository.
func NewObservationRepository(db *sqlx.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// FindByID returns an owned observation.
func (r *ObservationRepository) FindByID(ctx context.Context, userID, id string) (*models.Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations WHERE id = $1 AND user_id = $2`
	var observation models.Observation
	if err := r.db.GetContext(ctx, &observation, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find observation: %w", err)
	}
	return &observation, nil
}

// ListByEvaluation returns an evaluation's observations, oldest first.
func (r *ObservationRepository) ListByEvaluation(ctx context.Context, userID, evaluationID string) ([]models.Observation, error) {
	query := `SELECT ` + observationColumns + ` FROM observations WHERE evaluation_id = $1 AND user_id = $2 ORDER BY created_at ASC`
	var observations []models.Observation
	if err := r.db.SelectContext(ctx, &observations, query, evaluationID, userID); err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	return observations, nil
}

// Create inserts an observation.
func (r *ObservationRepository) Create(ctx context.Context, observation *models.Observation) error {
	if observation.ID == "" {
		observation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	observation.CreatedAt = now
	observation.UpdatedAt = now

	const query = `INSERT INTO observations (id, user_id, evaluation_id, observation_type, responses, notes, created_at, updated_at) VALUES (:id, :user_id, :evaluation_id, :observation_type, :responses, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, observation); err != nil {
		return fmt.Errorf("create observation: %w", err)
	}
	return nil
}

// Update applies a partial patch.
func (r *ObservationRepository) Update(ctx context.Context, userID, id string, patch models.ObservationPatch) error {
	var responses interface{}
	if patch.Responses != nil {
		responses = patch.Responses
	}
	const query = `UPDATE observations SET responses = COALESCE($3, responses), notes = COALESCE($4, notes), updated_at = $5 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID, responses, patch.Notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update observation: %w", err)
	}
	return expectAffected(res, "update observation")
}

// Delete removes an owned observation.
func (r *ObservationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM observations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}
	return expectAffected(res, "delete observation")
}
