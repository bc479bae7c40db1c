package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type draftStore interface {
	Load(ctx context.Context, userID, assessmentID string) (editsession.Snapshot[int], error)
	Save(ctx context.Context, userID, assessmentID string, snap editsession.Snapshot[int]) error
	Delete(ctx context.Context, userID, assessmentID string) error
}

type draftAssessments interface {
	Get(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error)
	ReplaceResponses(ctx context.Context, userID, id string, responses map[string]int) error
}

// DraftService runs the view/edit/save workflow for assessment responses. The
// session is rebuilt per request from the stored snapshot and the database row.
type DraftService struct {
	store       draftStore
	assessments draftAssessments
	catalog     *catalog.Catalog
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDraftService constructs a DraftService.
func NewDraftService(store draftStore, assessments draftAssessments, validate *validator.Validate, logger *zap.Logger) *DraftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{store: store, assessments: assessments, catalog: catalog.SPM2Home(), validator: validate, logger: logger}
}

// Get returns the current session view. Without a draft the session is viewing.
func (s *DraftService) Get(ctx context.Context, userID, assessmentID string) (*models.DraftView, error) {
	sess, err := s.session(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return view(assessmentID, sess), nil
}

// Begin opens an edit buffer seeded from the persisted responses.
func (s *DraftService) Begin(ctx context.Context, userID, assessmentID string) (*models.DraftView, error) {
	sess, err := s.session(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := sess.Begin(); err != nil {
		return nil, transitionError(err, "a draft is already in progress")
	}
	if err := s.persist(ctx, userID, assessmentID, sess); err != nil {
		return nil, err
	}
	return view(assessmentID, sess), nil
}

// Set records one answer in the edit buffer.
func (s *DraftService) Set(ctx context.Context, userID, assessmentID, questionID string, req models.SetDraftResponseRequest) (*models.DraftView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft response")
	}
	if err := validateSPMResponses(s.catalog, map[string]int{questionID: req.Value}); err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := sess.Set(questionID, req.Value); err != nil {
		return nil, transitionError(err, "no draft in progress")
	}
	if err := s.persist(ctx, userID, assessmentID, sess); err != nil {
		return nil, err
	}
	return view(assessmentID, sess), nil
}

// Cancel discards the edit buffer.
func (s *DraftService) Cancel(ctx context.Context, userID, assessmentID string) (*models.DraftView, error) {
	sess, err := s.session(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := sess.Cancel(); err != nil {
		return nil, transitionError(err, "no draft in progress")
	}
	if err := s.store.Delete(ctx, userID, assessmentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard draft")
	}
	return view(assessmentID, sess), nil
}

// Commit saves the buffer as the assessment's responses. When the save fails the
// draft is kept so the caller can retry.
func (s *DraftService) Commit(ctx context.Context, userID, assessmentID string) (*models.DraftView, error) {
	sess, err := s.session(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	err = sess.Save(ctx, func(ctx context.Context, draft map[string]int) (map[string]int, error) {
		if err := s.assessments.ReplaceResponses(ctx, userID, assessmentID, draft); err != nil {
			return nil, err
		}
		refreshed, err := s.assessments.Get(ctx, userID, assessmentID)
		if err != nil {
			// The write succeeded, so the draft is what was stored.
			s.logger.Warn("failed to reload committed responses", zap.String("assessment_id", assessmentID), zap.Error(err))
			return draft, nil
		}
		return refreshed.Responses, nil
	})
	if err != nil {
		if errors.Is(err, editsession.ErrInvalidTransition) {
			return nil, transitionError(err, "no draft in progress")
		}
		if perr := s.persist(ctx, userID, assessmentID, sess); perr != nil {
			s.logger.Warn("failed to keep draft after save error", zap.String("assessment_id", assessmentID), zap.Error(perr))
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, userID, assessmentID); err != nil {
		s.logger.Warn("failed to clear committed draft", zap.String("assessment_id", assessmentID), zap.Error(err))
	}
	s.logger.Info("draft committed", zap.String("assessment_id", assessmentID))
	return view(assessmentID, sess), nil
}

// Responses resolves the response map for source along with the assessment.
func (s *DraftService) Responses(ctx context.Context, userID, assessmentID string, source editsession.Source) (map[string]int, *models.AssessmentWithClient, error) {
	assessment, err := s.assessments.Get(ctx, userID, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	if source == editsession.SourcePersisted {
		return map[string]int(assessment.Responses), assessment, nil
	}
	sess, err := s.restore(ctx, userID, assessment)
	if err != nil {
		return nil, nil, err
	}
	return sess.Responses(source), assessment, nil
}

func (s *DraftService) session(ctx context.Context, userID, assessmentID string) (*editsession.Session[int], error) {
	assessment, err := s.assessments.Get(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.restore(ctx, userID, assessment)
}

func (s *DraftService) restore(ctx context.Context, userID string, assessment *models.AssessmentWithClient) (*editsession.Session[int], error) {
	persisted := map[string]int(assessment.Responses)
	snap, err := s.store.Load(ctx, userID, assessment.ID)
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return editsession.New(persisted), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	snap.Persisted = persisted
	sess, err := editsession.Restore(snap)
	if err != nil {
		s.logger.Warn("discarding unreadable draft", zap.String("assessment_id", assessment.ID), zap.Error(err))
		return editsession.New(persisted), nil
	}
	return sess, nil
}

func (s *DraftService) persist(ctx context.Context, userID, assessmentID string, sess *editsession.Session[int]) error {
	if err := s.store.Save(ctx, userID, assessmentID, sess.Snapshot()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store draft")
	}
	return nil
}

func view(assessmentID string, sess *editsession.Session[int]) *models.DraftView {
	persisted := sess.Responses(editsession.SourcePersisted)
	if persisted == nil {
		persisted = map[string]int{}
	}
	active := sess.Active()
	if active == nil {
		active = map[string]int{}
	}
	return &models.DraftView{
		AssessmentID: assessmentID,
		State:        string(sess.State()),
		Dirty:        sess.Dirty(),
		Responses:    active,
		Persisted:    persisted,
	}
}

func transitionError(err error, message string) error {
	if errors.Is(err, editsession.ErrInvalidTransition) {
		return appErrors.Wrap(err, appErrors.ErrInvalidState.Code, appErrors.ErrInvalidState.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("draft: %s", message))
}
