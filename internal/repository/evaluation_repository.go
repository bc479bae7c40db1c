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

const evaluationColumns = `id, user_id, client_id, name, created_at, updated_at`

// EvaluationRepository persists evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// FindByID returns an evaluation owned by userID.
func (r *EvaluationRepository) FindByID(ctx context.Context, userID, id string) (*models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1 AND user_id = $2`
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation: %w", err)
	}
	return &evaluation, nil
}

// ListByClient returns a client's evaluations, newest first.
func (r *EvaluationRepository) ListByClient(ctx context.Context, userID, clientID string) ([]models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE client_id = $1 AND user_id = $2 ORDER BY created_at DESC`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, clientID, userID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	evaluation.CreatedAt = now
	evaluation.UpdatedAt = now

	const query = `INSERT INTO evaluations (id, user_id, client_id, name, created_at, updated_at) VALUES (:id, :user_id, :client_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// Delete removes an owned evaluation and, by cascade, its observations.
func (r *EvaluationRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return expectAffected(res, "delete evaluation")
}
