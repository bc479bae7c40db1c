package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/takeaway"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type observationRepository interface {
	FindByID(ctx context.Context, userID, id string) (*models.Observation, error)
	Create(ctx context.Context, observation *models.Observation) error
	Update(ctx context.Context, userID, id string, patch models.ObservationPatch) error
	Delete(ctx context.Context, userID, id string) error
}

type observationEvaluationReader interface {
	FindByID(ctx context.Context, userID, id string) (*models.Evaluation, error)
}

// ObservationService manages observation records and their text summaries.
type ObservationService struct {
	repo        observationRepository
	evaluations observationEvaluationReader
	clients     evaluationClientReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewObservationService constructs an ObservationService.
func NewObservationService(repo observationRepository, evaluations observationEvaluationReader, clients evaluationClientReader, validate *validator.Validate, logger *zap.Logger) *ObservationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObservationService{repo: repo, evaluations: evaluations, clients: clients, validator: validate, logger: logger}
}

// ObservationTemplate resolves an observation template by id. Scored questionnaires are not templates.
func ObservationTemplate(id string) (*catalog.Catalog, error) {
	template, ok := catalog.ByID(id)
	if !ok || len(template.Scale()) > 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "observation template not found")
	}
	return template, nil
}

// Create records an observation against an owned evaluation.
func (s *ObservationService) Create(ctx context.Context, userID string, req models.CreateObservationRequest) (*models.Observation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid observation payload")
	}
	template, err := ObservationTemplate(req.ObservationType)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown observation type")
	}
	if err := validateObservationResponses(template, req.Responses); err != nil {
		return nil, err
	}
	if _, err := s.evaluation(ctx, userID, req.EvaluationID); err != nil {
		return nil, err
	}

	observation := &models.Observation{
		UserID:          userID,
		EvaluationID:    req.EvaluationID,
		ObservationType: req.ObservationType,
		Responses:       req.Responses,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, observation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create observation")
	}
	return observation, nil
}

// Get returns one owned observation.
func (s *ObservationService) Get(ctx context.Context, userID, id string) (*models.Observation, error) {
	observation, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "observation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load observation")
	}
	return observation, nil
}

// Update patches responses and/or notes.
func (s *ObservationService) Update(ctx context.Context, userID, id string, req models.UpdateObservationRequest) (*models.Observation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid observation payload")
	}
	if req.Responses == nil && req.Notes == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Responses != nil {
		template, err := ObservationTemplate(current.ObservationType)
		if err != nil {
			return nil, err
		}
		if err := validateObservationResponses(template, req.Responses); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, userID, id, models.ObservationPatch{Responses: req.Responses, Notes: req.Notes}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "observation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update observation")
	}
	return s.Get(ctx, userID, id)
}

// Delete removes an owned observation.
func (s *ObservationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "observation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete observation")
	}
	return nil
}

// Summary renders the plain-text summary of an observation for its client.
func (s *ObservationService) Summary(ctx context.Context, userID, id string) (string, error) {
	observation, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	template, err := ObservationTemplate(observation.ObservationType)
	if err != nil {
		return "", err
	}
	evaluation, err := s.evaluation(ctx, userID, observation.EvaluationID)
	if err != nil {
		return "", err
	}
	client, err := s.clients.FindByID(ctx, userID, evaluation.ClientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}

	var notes string
	if observation.Notes != nil {
		notes = *observation.Notes
	}
	return takeaway.ObservationSummary(template, observation.Responses, notes, client.FullName()), nil
}

func (s *ObservationService) evaluation(ctx context.Context, userID, id string) (*models.Evaluation, error) {
	evaluation, err := s.evaluations.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}
