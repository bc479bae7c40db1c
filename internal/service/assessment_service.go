package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type assessmentRepository interface {
	FindByID(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error)
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, int, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, userID, id string, patch models.AssessmentPatch) error
	Delete(ctx context.Context, userID, id string) error
}

type draftDeleter interface {
	Delete(ctx context.Context, userID, assessmentID string) error
}

// takeawayWarmer schedules narrative pre-generation after responses change.
type takeawayWarmer interface {
	Warm(userID, assessmentID string)
}

// AssessmentService manages SPM-2 assessments.
type AssessmentService struct {
	repo      assessmentRepository
	clients   evaluationClientReader
	drafts    draftDeleter
	warmer    takeawayWarmer
	catalog   *catalog.Catalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService constructs an AssessmentService. drafts and warmer may be nil.
func NewAssessmentService(repo assessmentRepository, clients evaluationClientReader, drafts draftDeleter, warmer takeawayWarmer, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		repo:      repo,
		clients:   clients,
		drafts:    drafts,
		warmer:    warmer,
		catalog:   catalog.SPM2Home(),
		validator: validate,
		logger:    logger,
	}
}

// SetWarmer attaches the takeaway warmer, which itself reads responses through this service.
func (s *AssessmentService) SetWarmer(warmer takeawayWarmer) {
	s.warmer = warmer
}

// Create stores a new assessment for an owned client.
func (s *AssessmentService) Create(ctx context.Context, userID string, req models.CreateAssessmentRequest) (*models.AssessmentWithClient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if err := validateSPMResponses(s.catalog, req.Responses); err != nil {
		return nil, err
	}
	if _, err := s.clients.FindByID(ctx, userID, req.ClientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}

	assessment := &models.Assessment{
		UserID:    userID,
		ClientID:  req.ClientID,
		FormID:    s.catalog.ID(),
		Responses: req.Responses,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	s.logger.Info("assessment created", zap.String("assessment_id", assessment.ID), zap.Int("responses", len(assessment.Responses)))
	s.warm(userID, assessment.ID)
	return s.Get(ctx, userID, assessment.ID)
}

// List returns the owner's assessments, optionally for one client.
func (s *AssessmentService) List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	if items == nil {
		items = []models.AssessmentWithClient{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one owned assessment.
func (s *AssessmentService) Get(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error) {
	assessment, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	if assessment.Responses == nil {
		assessment.Responses = models.SPMResponses{}
	}
	return assessment, nil
}

// Update patches responses and/or notes. A responses patch replaces the whole map.
func (s *AssessmentService) Update(ctx context.Context, userID, id string, req models.UpdateAssessmentRequest) (*models.AssessmentWithClient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	if req.Responses == nil && req.Notes == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if err := s.replace(ctx, userID, id, models.AssessmentPatch{Responses: req.Responses, Notes: req.Notes}); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// ReplaceResponses persists a full response map. Used by the draft commit path.
func (s *AssessmentService) ReplaceResponses(ctx context.Context, userID, id string, responses map[string]int) error {
	if responses == nil {
		responses = map[string]int{}
	}
	return s.replace(ctx, userID, id, models.AssessmentPatch{Responses: responses})
}

// Delete removes an owned assessment and any draft for it.
func (s *AssessmentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessment")
	}
	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, userID, id); err != nil {
			s.logger.Warn("failed to discard draft", zap.String("assessment_id", id), zap.Error(err))
		}
	}
	return nil
}

func (s *AssessmentService) replace(ctx context.Context, userID, id string, patch models.AssessmentPatch) error {
	if patch.Responses != nil {
		if err := validateSPMResponses(s.catalog, patch.Responses); err != nil {
			return err
		}
	}
	if err := s.repo.Update(ctx, userID, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}
	if patch.Responses != nil {
		s.warm(userID, id)
	}
	return nil
}

func (s *AssessmentService) warm(userID, id string) {
	if s.warmer != nil {
		s.warmer.Warm(userID, id)
	}
}
