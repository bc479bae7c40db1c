package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/catalog"
	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/takeaway"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
	"github.com/noah-isme/ot-practice-api/pkg/jobs"
)

// JobTypeTakeawayWarm pre-generates narrative takeaways for an assessment.
const JobTypeTakeawayWarm = "takeaway.warm"

// Takeaway modes.
const (
	TakeawayModeTemplate  = "template"
	TakeawayModeNarrative = "narrative"

	narrativeCachePrefix = "takeaway:narrative:"
)

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// WarmPayload identifies the assessment a warm job targets.
type WarmPayload struct {
	UserID       string
	AssessmentID string
}

// AssessmentTakeaways holds per-section takeaways in catalog order.
type AssessmentTakeaways struct {
	AssessmentID string              `json:"assessment_id"`
	Mode         string              `json:"mode"`
	Source       editsession.Source  `json:"source"`
	Sections     []takeaway.Takeaway `json:"sections"`
}

// TakeawayConfig configures narrative generation and caching.
type TakeawayConfig struct {
	NarrativeEnabled bool
	CacheTTL         time.Duration
}

// TakeawayService composes section takeaways, caching generated narratives.
type TakeawayService struct {
	responses responseResolver
	generator takeaway.Generator
	cache     *CacheService
	metrics   *MetricsService
	queue     jobEnqueuer
	catalog   *catalog.Catalog
	config    TakeawayConfig
	logger    *zap.Logger
}

// NewTakeawayService constructs a TakeawayService. generator, cache, metrics and queue may be nil.
func NewTakeawayService(responses responseResolver, generator takeaway.Generator, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config TakeawayConfig) *TakeawayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 24 * time.Hour
	}
	return &TakeawayService{
		responses: responses,
		generator: generator,
		cache:     cache,
		metrics:   metrics,
		catalog:   catalog.SPM2Home(),
		config:    config,
		logger:    logger,
	}
}

// SetQueue attaches the warm-up queue. The queue's handler is HandleJob, so it is
// wired after construction.
func (s *TakeawayService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Takeaways composes a takeaway per section for the chosen response source.
func (s *TakeawayService) Takeaways(ctx context.Context, userID, assessmentID, mode string, source editsession.Source) (*AssessmentTakeaways, error) {
	if mode == "" {
		mode = TakeawayModeTemplate
	}
	if mode != TakeawayModeTemplate && mode != TakeawayModeNarrative {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown takeaway mode %q", mode))
	}

	responses, assessment, err := s.responses.Responses(ctx, userID, assessmentID, source)
	if err != nil {
		return nil, err
	}

	sections, err := takeaway.ComposeSections(ctx, s.composer(mode), s.catalog.Sections(), responses, assessment.SubjectName())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compose takeaways")
	}
	return &AssessmentTakeaways{AssessmentID: assessment.ID, Mode: mode, Source: source, Sections: sections}, nil
}

// Warm schedules narrative pre-generation. It never blocks; a full queue only logs.
func (s *TakeawayService) Warm(userID, assessmentID string) {
	if s.queue == nil || !s.config.NarrativeEnabled || !s.cache.Enabled() {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeTakeawayWarm,
		Payload: WarmPayload{UserID: userID, AssessmentID: assessmentID},
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("failed to enqueue takeaway warm-up", zap.String("assessment_id", assessmentID), zap.Error(err))
	}
}

// HandleJob processes a queued warm-up job.
func (s *TakeawayService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(WarmPayload)
	if !ok {
		s.metrics.RecordJob(job.Type, fmt.Errorf("unexpected payload %T", job.Payload))
		return nil
	}
	_, err := s.Takeaways(ctx, payload.UserID, payload.AssessmentID, TakeawayModeNarrative, editsession.SourcePersisted)
	s.metrics.RecordJob(job.Type, err)
	return err
}

func (s *TakeawayService) composer(mode string) takeaway.Composer {
	if mode == TakeawayModeTemplate {
		return takeaway.TemplateComposer{}
	}
	var generator takeaway.Generator
	if s.config.NarrativeEnabled {
		generator = s.generator
	}
	fallback := takeaway.FallbackComposer{
		Primary:  takeaway.NarrativeComposer{Generator: generator},
		Fallback: takeaway.TemplateComposer{},
		Logger:   s.logger,
		Observe:  s.metrics.RecordNarrative,
	}
	return cachedComposer{next: fallback, cache: s.cache, metrics: s.metrics, ttl: s.config.CacheTTL}
}

// cachedComposer serves narratives from the cache and stores fresh ones. Fallback
// results are never stored so a later call can retry the generator.
type cachedComposer struct {
	next    takeaway.Composer
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
}

func (c cachedComposer) Compose(ctx context.Context, req takeaway.Request) (takeaway.Takeaway, error) {
	buckets := takeaway.SelectHighlights(req.Section, req.Responses)
	if buckets.Empty() || !c.cache.Enabled() {
		return c.next.Compose(ctx, req)
	}

	key := NarrativeCacheKey(req.Section.ID, buckets, req.SubjectName)
	var cached takeaway.Takeaway
	if hit, _ := c.cache.Get(ctx, key, &cached); hit {
		c.metrics.RecordNarrative(NarrativeOutcomeCached)
		cached.Source = takeaway.SourceCache
		return cached, nil
	}

	out, err := c.next.Compose(ctx, req)
	if err != nil {
		return out, err
	}
	if out.Source == takeaway.SourceNarrative {
		_ = c.cache.Set(ctx, key, out, c.ttl)
	}
	return out, nil
}

// NarrativeCacheKey digests everything a narrative depends on.
func NarrativeCacheKey(sectionID string, b takeaway.Buckets, subjectName string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", sectionID, subjectName)
	for _, label := range takeaway.EmissionOrder {
		fmt.Fprintf(h, "%s=%s\x00", label, strings.Join(b.Items(label), "\x1f"))
	}
	return narrativeCachePrefix + hex.EncodeToString(h.Sum(nil))
}

// PurgeNarratives drops every cached narrative so the next request regenerates it.
func (s *TakeawayService) PurgeNarratives(ctx context.Context) error {
	if !s.cache.Enabled() {
		return appErrors.Clone(appErrors.ErrInternal, "narrative cache unavailable")
	}
	if err := s.cache.Invalidate(ctx, narrativeCachePrefix+"*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge narrative cache")
	}
	s.logger.Info("narrative cache purged")
	return nil
}
