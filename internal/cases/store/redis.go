package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
	normalize "casetriage/pkg/platform/strings"
)

const (
	caseKeyPrefix    = "casetriage:case:"
	historyKeySuffix = ":history"
	scopeKeyPrefix   = "casetriage:scope:"
	allCasesKey      = "casetriage:cases"
	viewerKeyPrefix  = "casetriage:viewer:"

	// DefaultMaxWatchRetries bounds optimistic retries of a status update.
	DefaultMaxWatchRetries = 5
)

// RedisStore keeps each case as a JSON document plus set indexes by scope.
// Status updates are WATCH/MULTI transactions retried a bounded number of
// times; exhausting them yields sentinel.ErrConflict.
type RedisStore struct {
	client     *redis.Client
	clock      clock.Clock
	maxRetries int
}

// NewRedis builds a store over an existing client. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	return &RedisStore{client: client, clock: o.clock, maxRetries: DefaultMaxWatchRetries}
}

func caseKey(id models.CaseID) string { return caseKeyPrefix + string(id) }
func historyKey(id models.CaseID) string { return caseKeyPrefix + string(id) + historyKeySuffix }
func scopeKey(label string) string { return scopeKeyPrefix + normalize.NormalizeLabel(label) }
func viewerKey(viewerID string) string { return viewerKeyPrefix + viewerID }

// Create stores a new case and its index entries in one MULTI guarded by a
// WATCH on the case key. A duplicate id is sentinel.ErrConflict. If a queued
// command fails inside EXEC the case is removed again so a retry starts clean.
func (s *RedisStore) Create(ctx context.Context, c *models.Case) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal case: %w", err)
	}
	key := caseKey(c.ID)

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check case: %w", err)
		}
		if exists > 0 {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.SAdd(ctx, allCasesKey, string(c.ID))
			pipe.SAdd(ctx, scopeKey(c.Jurisdiction), string(c.ID))
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			s.unindex(ctx, c)
			return fmt.Errorf("index case: %w", err)
		}
		return err
	}

	err = s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return sentinel.ErrConflict
	}
	return err
}

// unindex drops whatever a failed Create managed to write.
func (s *RedisStore) unindex(ctx context.Context, c *models.Case) {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, caseKey(c.ID))
	pipe.SRem(ctx, allCasesKey, string(c.ID))
	pipe.SRem(ctx, scopeKey(c.Jurisdiction), string(c.ID))
	_, _ = pipe.Exec(ctx)
}

// FindByID returns the case or sentinel.ErrNotFound.
func (s *RedisStore) FindByID(ctx context.Context, id models.CaseID) (*models.Case, error) {
	raw, err := s.client.Get(ctx, caseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return decodeCase(raw)
}

// FetchByScope returns the cases indexed under label, ordered by id.
func (s *RedisStore) FetchByScope(ctx context.Context, label string) ([]models.Case, error) {
	return s.fetchSet(ctx, scopeKey(label))
}

// FetchAll returns every case, ordered by id.
func (s *RedisStore) FetchAll(ctx context.Context) ([]models.Case, error) {
	return s.fetchSet(ctx, allCasesKey)
}

func (s *RedisStore) fetchSet(ctx context.Context, setKey string) ([]models.Case, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list case ids: %w", err)
	}
	out := []models.Case{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = caseKey(models.CaseID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCase([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	sortByID(out)
	return out, nil
}

// UpdateStatus watches the case key, runs check on the current document and
// writes target in a MULTI block. A concurrent writer aborts the block and
// the whole read-check-write is retried.
func (s *RedisStore) UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error) {
	key := caseKey(id)
	var updated *models.Case

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get case: %w", err)
		}
		c, err := decodeCase(raw)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(c.Clone()); err != nil {
				return err
			}
		}

		from := c.Status
		c.ApplyStatus(target, s.clock.Now())
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal case: %w", err)
		}
		change, err := json.Marshal(models.StatusChange{CaseID: id, From: from, To: c.Status, ChangedAt: c.UpdatedAt})
		if err != nil {
			return fmt.Errorf("marshal status change: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.RPush(ctx, historyKey(id), change)
			return nil
		})
		if err != nil {
			return err
		}
		updated = c
		return nil
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update case %s after %d attempts: %w", id, s.maxRetries, sentinel.ErrConflict)
}

// StatusHistory returns the recorded transitions of a case, oldest first.
func (s *RedisStore) StatusHistory(ctx context.Context, id models.CaseID) ([]models.StatusChange, error) {
	raw, err := s.client.LRange(ctx, historyKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	out := make([]models.StatusChange, 0, len(raw))
	for _, r := range raw {
		var change models.StatusChange
		if err := json.Unmarshal([]byte(r), &change); err != nil {
			return nil, fmt.Errorf("decode status change: %w", err)
		}
		out = append(out, change)
	}
	return out, nil
}

// SaveViewer stores a viewer's jurisdiction.
func (s *RedisStore) SaveViewer(ctx context.Context, v models.Viewer) error {
	return s.client.Set(ctx, viewerKey(v.ID), v.Jurisdiction, 0).Err()
}

// FindViewer returns the viewer or sentinel.ErrNotFound.
func (s *RedisStore) FindViewer(ctx context.Context, viewerID string) (*models.Viewer, error) {
	jurisdiction, err := s.client.Get(ctx, viewerKey(viewerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get viewer: %w", err)
	}
	return &models.Viewer{ID: viewerID, Jurisdiction: jurisdiction}, nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}

func decodeCase(raw []byte) (*models.Case, error) {
	var c models.Case
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return &c, nil
}
