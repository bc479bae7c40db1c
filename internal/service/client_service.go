package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

const birthDateLayout = "2006-01-02"

type clientRepository interface {
	FindByID(ctx context.Context, userID, id string) (*models.Client, error)
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, userID, id string) error
}

// ClientService manages a practitioner's clients.
type ClientService struct {
	repo      clientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(repo clientRepository, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, validator: validate, logger: logger}
}

// List returns the owner's clients with pagination metadata.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize)
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one owned client.
func (s *ClientService) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// Create registers a client for the owner.
func (s *ClientService) Create(ctx context.Context, userID string, req models.ClientRequest) (*models.Client, error) {
	birthDate, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	client := &models.Client{
		UserID:    userID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		BirthDate: birthDate,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	s.logger.Info("client created", zap.String("client_id", client.ID), zap.String("user_id", userID))
	return client, nil
}

// Update replaces an owned client's details.
func (s *ClientService) Update(ctx context.Context, userID, id string, req models.ClientRequest) (*models.Client, error) {
	birthDate, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	client, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	client.FirstName = strings.TrimSpace(req.FirstName)
	client.LastName = strings.TrimSpace(req.LastName)
	client.BirthDate = birthDate
	if err := s.repo.Update(ctx, client); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	return client, nil
}

// Delete removes an owned client together with its evaluations and assessments.
func (s *ClientService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	s.logger.Info("client deleted", zap.String("client_id", id), zap.String("user_id", userID))
	return nil
}

func (s *ClientService) parse(req models.ClientRequest) (time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}
	if birthDate.After(time.Now().UTC()) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "birth date is in the future")
	}
	return birthDate, nil
}
