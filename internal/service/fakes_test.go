package service

import (
	"context"
	"database/sql"
	"maps"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
	"github.com/noah-isme/ot-practice-api/pkg/jobs"
)

type fakeClientRepo struct {
	clients map[string]*models.Client
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	repo := &fakeClientRepo{clients: map[string]*models.Client{}}
	for _, c := range clients {
		repo.clients[c.ID] = c
	}
	return repo
}

func (f *fakeClientRepo) FindByID(ctx context.Context, userID, id string) (*models.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeClientRepo) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	var out []models.Client
	for _, c := range f.clients {
		if c.UserID == filter.UserID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeClientRepo) Create(ctx context.Context, client *models.Client) error {
	client.ID = "client-" + client.FirstName
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Update(ctx context.Context, client *models.Client) error {
	if _, err := f.FindByID(ctx, client.UserID, client.ID); err != nil {
		return err
	}
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.FindByID(ctx, userID, id); err != nil {
		return err
	}
	delete(f.clients, id)
	return nil
}

type fakeEvaluationRepo struct {
	evaluations map[string]*models.Evaluation
}

func (f *fakeEvaluationRepo) FindByID(ctx context.Context, userID, id string) (*models.Evaluation, error) {
	e, ok := f.evaluations[id]
	if !ok || e.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEvaluationRepo) ListByClient(ctx context.Context, userID, clientID string) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, e := range f.evaluations {
		if e.UserID == userID && e.ClientID == clientID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvaluationRepo) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if f.evaluations == nil {
		f.evaluations = map[string]*models.Evaluation{}
	}
	evaluation.ID = "eval-" + evaluation.Name
	f.evaluations[evaluation.ID] = evaluation
	return nil
}

func (f *fakeEvaluationRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.FindByID(ctx, userID, id); err != nil {
		return err
	}
	delete(f.evaluations, id)
	return nil
}

type fakeObservationRepo struct {
	observations map[string]*models.Observation
}

func (f *fakeObservationRepo) FindByID(ctx context.Context, userID, id string) (*models.Observation, error) {
	o, ok := f.observations[id]
	if !ok || o.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *o
	return &clone, nil
}

func (f *fakeObservationRepo) ListByEvaluation(ctx context.Context, userID, evaluationID string) ([]models.Observation, error) {
	var out []models.Observation
	for _, o := range f.observations {
		if o.UserID == userID && o.EvaluationID == evaluationID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeObservationRepo) Create(ctx context.Context, observation *models.Observation) error {
	if f.observations == nil {
		f.observations = map[string]*models.Observation{}
	}
	observation.ID = "obs-1"
	f.observations[observation.ID] = observation
	return nil
}

func (f *fakeObservationRepo) Update(ctx context.Context, userID, id string, patch models.ObservationPatch) error {
	o, ok := f.observations[id]
	if !ok || o.UserID != userID {
		return sql.ErrNoRows
	}
	if patch.Responses != nil {
		o.Responses = patch.Responses
	}
	if patch.Notes != nil {
		o.Notes = patch.Notes
	}
	return nil
}

func (f *fakeObservationRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.FindByID(ctx, userID, id); err != nil {
		return err
	}
	delete(f.observations, id)
	return nil
}

type fakeAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[string]*models.AssessmentWithClient
	updateErr   error
	updates     int
	// findErrAfterUpdate fails lookups once an update has been applied.
	findErrAfterUpdate error
}

func newFakeAssessmentRepo(items ...*models.AssessmentWithClient) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{assessments: map[string]*models.AssessmentWithClient{}}
	for _, a := range items {
		repo.assessments[a.ID] = a
	}
	return repo
}

func (f *fakeAssessmentRepo) FindByID(ctx context.Context, userID, id string) (*models.AssessmentWithClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErrAfterUpdate != nil && f.updates > 0 {
		return nil, f.findErrAfterUpdate
	}
	a, ok := f.assessments[id]
	if !ok || a.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *a
	clone.Responses = maps.Clone(a.Responses)
	return &clone, nil
}

func (f *fakeAssessmentRepo) List(ctx context.Context, filter models.AssessmentFilter) ([]models.AssessmentWithClient, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AssessmentWithClient
	for _, a := range f.assessments {
		if a.UserID == filter.UserID && (filter.ClientID == "" || a.ClientID == filter.ClientID) {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (f *fakeAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assessment.ID = "assessment-new"
	assessment.AssessmentDate = time.Now().UTC()
	f.assessments[assessment.ID] = &models.AssessmentWithClient{Assessment: *assessment, ClientFirstName: "Ada", ClientLastName: "Lovelace"}
	return nil
}

func (f *fakeAssessmentRepo) Update(ctx context.Context, userID, id string, patch models.AssessmentPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.assessments[id]
	if !ok || a.UserID != userID {
		return sql.ErrNoRows
	}
	f.updates++
	if patch.Responses != nil {
		a.Responses = maps.Clone(patch.Responses)
	}
	if patch.Notes != nil {
		a.Notes = patch.Notes
	}
	return nil
}

func (f *fakeAssessmentRepo) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok || a.UserID != userID {
		return sql.ErrNoRows
	}
	delete(f.assessments, id)
	return nil
}

type fakeDraftStore struct {
	snaps   map[string]editsession.Snapshot[int]
	deleted []string
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{snaps: map[string]editsession.Snapshot[int]{}}
}

func (f *fakeDraftStore) Load(ctx context.Context, userID, assessmentID string) (editsession.Snapshot[int], error) {
	snap, ok := f.snaps[userID+"/"+assessmentID]
	if !ok {
		return snap, appErrors.ErrCacheMiss
	}
	return snap, nil
}

func (f *fakeDraftStore) Save(ctx context.Context, userID, assessmentID string, snap editsession.Snapshot[int]) error {
	f.snaps[userID+"/"+assessmentID] = snap
	return nil
}

func (f *fakeDraftStore) Delete(ctx context.Context, userID, assessmentID string) error {
	delete(f.snaps, userID+"/"+assessmentID)
	f.deleted = append(f.deleted, assessmentID)
	return nil
}

type recordingWarmer struct {
	calls []string
}

func (r *recordingWarmer) Warm(userID, assessmentID string) {
	r.calls = append(r.calls, assessmentID)
}

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) TryEnqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
		}
	}
	return nil
}
