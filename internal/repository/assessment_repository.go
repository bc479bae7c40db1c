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

const assessmentSelect = `SELECT a.id, a.user_id, a.client_id, a.form_id, a.assessment_date, a.responses, a.notes, a.created_at, a.updated_at,
c.first_name AS client_first_name, c.last_name AS client_last_name
FROM spm2_assessments a JOIN clients c ON c.id = a.client_id`

// AssessmentRepository persists SPM-2 assessments.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// FindByID returns an owned assessment with its client's name.
func (r *AssessmentRepository) FindByID(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error) {
	query := assessmentSelect + ` WHERE a.id = $1 AND a.user_id = $2`
	var assessment models.AssessmentWithClient
	if err := r.db.GetContext(ctx, &assessment, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// List returns owned assessments, newest first, optionally for one client.
func (r *AssessmentRepository) List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, int, error) {
	where := ` WHERE a.user_id = $1`
	args := []interface{}{filter.UserID}
	if filter.ClientID != "" {
		where += fmt.Sprintf(" AND a.client_id = $%d", len(args)+1)
		args = append(args, filter.ClientID)
	}

	page, size := models.NormalisePage(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("%s%s ORDER BY a.assessment_date DESC LIMIT %d OFFSET %d", assessmentSelect, where, size, (page-1)*size)

	var assessments []models.AssessmentWithClient
	if err := r.db.SelectContext(ctx, &assessments, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list assessments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM spm2_assessments a"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count assessments: %w", err)
	}
	return assessments, total, nil
}

// Create inserts an assessment.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assessment.AssessmentDate.IsZero() {
		assessment.AssessmentDate = now
	}
	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	const query = `INSERT INTO spm2_assessments (id, user_id, client_id, form_id, assessment_date, responses, notes, created_at, updated_at) VALUES (:id, :user_id, :client_id, :form_id, :assessment_date, :responses, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update applies a partial patch. A nil Responses map or Notes pointer leaves the column as is.
func (r *AssessmentRepository) Update(ctx context.Context, userID, id string, patch models.AssessmentPatch) error {
	var responses interface{}
	if patch.Responses != nil {
		responses = patch.Responses
	}
	const query = `UPDATE spm2_assessments SET responses = COALESCE($3, responses), notes = COALESCE($4, notes), updated_at = $5 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID, responses, patch.Notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return expectAffected(res, "update assessment")
}

// Delete removes an owned assessment.
func (r *AssessmentRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spm2_assessments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return expectAffected(res, "delete assessment")
}
