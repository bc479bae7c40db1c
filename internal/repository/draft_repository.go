package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/ot-practice-api/internal/editsession"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

// DraftRepository keeps in-progress assessment edit sessions in Redis so an
// editing buffer survives across requests.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository constructs a DraftRepository. Non-positive ttl defaults to 12h.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &DraftRepository{client: client, ttl: ttl}
}

// DraftKey is the Redis key for a user's draft of an assessment.
func DraftKey(userID, assessmentID string) string {
	return fmt.Sprintf("draft:assessment:%s:%s", userID, assessmentID)
}

// Load returns the stored snapshot or ErrCacheMiss when none exists.
func (r *DraftRepository) Load(ctx context.Context, userID, assessmentID string) (editsession.Snapshot[int], error) {
	var snap editsession.Snapshot[int]
	if r.client == nil {
		return snap, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, DraftKey(userID, assessmentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, appErrors.ErrCacheMiss
		}
		return snap, fmt.Errorf("load draft: %w", err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decode draft: %w", err)
	}
	return snap, nil
}

// Save stores the snapshot and refreshes its TTL.
func (r *DraftRepository) Save(ctx context.Context, userID, assessmentID string, snap editsession.Snapshot[int]) error {
	if r.client == nil {
		return appErrors.Clone(appErrors.ErrInternal, "draft storage unavailable")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.client.Set(ctx, DraftKey(userID, assessmentID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Delete discards the draft. Missing drafts are not an error.
func (r *DraftRepository) Delete(ctx context.Context, userID, assessmentID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, DraftKey(userID, assessmentID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
