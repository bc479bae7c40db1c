package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/models"
)

var evaluationRowColumns = []string{"id", "user_id", "client_id", "name", "created_at", "updated_at"}

func TestEvaluationListByClient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("e2", "u1", "c1", "Follow-up", now, now).
		AddRow("e1", "u1", "c1", "Intake", now.Add(-time.Hour), now)
	mock.ExpectQuery("FROM evaluations WHERE client_id = \\$1 AND user_id = \\$2 ORDER BY created_at DESC").
		WithArgs("c1", "u1").
		WillReturnRows(rows)

	evaluations, err := repo.ListByClient(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.Len(t, evaluations, 2)
	assert.Equal(t, "Follow-up", evaluations[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectExec("INSERT INTO evaluations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM evaluations").WithArgs("e1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))

	evaluation := &models.Evaluation{ID: "e1", UserID: "u1", ClientID: "c1", Name: "Intake"}
	require.NoError(t, repo.Create(context.Background(), evaluation))
	assert.Equal(t, "e1", evaluation.ID)

	err := repo.Delete(context.Background(), "u1", "e1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectQuery("FROM evaluations WHERE id = \\$1").WithArgs("missing", "u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
