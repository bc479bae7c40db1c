package service

import (
	"context"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/norms"
	"github.com/noah-isme/ot-practice-api/internal/scoring"
)

type responseResolver interface {
	Responses(ctx context.Context, userID, assessmentID string, source editsession.Source) (map[string]int, *models.AssessmentWithClient, error)
}

// AssessmentScores is the score table of one assessment.
type AssessmentScores struct {
	AssessmentID string             `json:"assessment_id"`
	ClientName   string             `json:"client_name"`
	Source       editsession.Source `json:"source"`
	scoring.Report
}

// ScoreService computes score tables from persisted or draft responses.
type ScoreService struct {
	responses responseResolver
	catalog   *catalog.Catalog
	norms     *norms.Tables
}

// NewScoreService constructs a ScoreService over the embedded SPM-2 data.
func NewScoreService(responses responseResolver) *ScoreService {
	return &ScoreService{responses: responses, catalog: catalog.SPM2Home(), norms: norms.SPM2Home()}
}

// Scores returns section, composite and total scores.
func (s *ScoreService) Scores(ctx context.Context, userID, assessmentID string, source editsession.Source) (*AssessmentScores, error) {
	responses, assessment, err := s.responses.Responses(ctx, userID, assessmentID, source)
	if err != nil {
		return nil, err
	}
	return &AssessmentScores{
		AssessmentID: assessment.ID,
		ClientName:   assessment.ClientFullName(),
		Source:       source,
		Report:       scoring.Build(s.catalog, s.norms, responses),
	}, nil
}
