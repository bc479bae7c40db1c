package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type evaluationRepository interface {
	FindByID(ctx context.Context, userID, id string) (*models.Evaluation, error)
	ListByClient(ctx context.Context, userID, clientID string) ([]models.Evaluation, error)
	Create(ctx context.Context, evaluation *models.Evaluation) error
	Delete(ctx context.Context, userID, id string) error
}

type evaluationClientReader interface {
	FindByID(ctx context.Context, userID, id string) (*models.Client, error)
}

type evaluationObservationReader interface {
	ListByEvaluation(ctx context.Context, userID, evaluationID string) ([]models.Observation, error)
}

// EvaluationService manages evaluation visits.
type EvaluationService struct {
	repo         evaluationRepository
	clients      evaluationClientReader
	observations evaluationObservationReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(repo evaluationRepository, clients evaluationClientReader, observations evaluationObservationReader, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{repo: repo, clients: clients, observations: observations, validator: validate, logger: logger}
}

// Create opens an evaluation for an owned client.
func (s *EvaluationService) Create(ctx context.Context, userID string, req models.CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	if _, err := s.client(ctx, userID, req.ClientID); err != nil {
		return nil, err
	}
	evaluation := &models.Evaluation{UserID: userID, ClientID: req.ClientID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	return evaluation, nil
}

// Get returns an evaluation with its client and observations.
func (s *EvaluationService) Get(ctx context.Context, userID, id string) (*models.EvaluationDetail, error) {
	evaluation, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.client(ctx, userID, evaluation.ClientID)
	if err != nil {
		return nil, err
	}
	observations, err := s.observations.ListByEvaluation(ctx, userID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load observations")
	}
	if observations == nil {
		observations = []models.Observation{}
	}
	return &models.EvaluationDetail{Evaluation: *evaluation, Client: *client, Observations: observations}, nil
}

// ListByClient returns evaluations of an owned client.
func (s *EvaluationService) ListByClient(ctx context.Context, userID, clientID string) ([]models.Evaluation, error) {
	if _, err := s.client(ctx, userID, clientID); err != nil {
		return nil, err
	}
	evaluations, err := s.repo.ListByClient(ctx, userID, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	if evaluations == nil {
		evaluations = []models.Evaluation{}
	}
	return evaluations, nil
}

// Delete removes an owned evaluation and its observations.
func (s *EvaluationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation")
	}
	return nil
}

func (s *EvaluationService) find(ctx context.Context, userID, id string) (*models.Evaluation, error) {
	evaluation, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}

func (s *EvaluationService) client(ctx context.Context, userID, clientID string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, userID, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}
