package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diewo77/go-estimates/internal/store"
	"github.com/redis/go-redis/v9"
)

// ErrDraftNotFound is returned for unknown or expired draft ids.
var ErrDraftNotFound = fmt.Errorf("draft: %w", store.ErrNotFound)

// DraftStore keeps drafts between requests of one editing session.
type DraftStore interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id string) error
}

// MemoryDrafts keeps drafts in process memory. Like RedisDrafts, every save
// restarts the ttl; expired drafts are dropped on the next Get or Save.
// A ttl <= 0 keeps drafts until they are deleted.
type MemoryDrafts struct {
	Now func() time.Time

	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]memoryDraft
}

type memoryDraft struct {
	draft   Draft
	expires time.Time
}

func NewMemoryDrafts(ttl time.Duration) *MemoryDrafts {
	return &MemoryDrafts{Now: time.Now, ttl: ttl, drafts: map[string]memoryDraft{}}
}

func (m *MemoryDrafts) expired(e memoryDraft, now time.Time) bool {
	return m.ttl > 0 && !now.Before(e.expires)
}

func (m *MemoryDrafts) Get(_ context.Context, id string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if m.expired(e, m.Now()) {
		delete(m.drafts, id)
		return nil, ErrDraftNotFound
	}
	d := e.draft
	d.Lines = append([]Line(nil), d.Lines...)
	return &d, nil
}

func (m *MemoryDrafts) Save(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	for id, e := range m.drafts {
		if m.expired(e, now) {
			delete(m.drafts, id)
		}
	}
	cp := *d
	cp.Lines = append([]Line(nil), d.Lines...)
	m.drafts[d.ID] = memoryDraft{draft: cp, expires: now.Add(m.ttl)}
	return nil
}

// Len reports how many drafts are held, expired ones included.
func (m *MemoryDrafts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drafts)
}

func (m *MemoryDrafts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}

// RedisDrafts stores drafts as JSON with a sliding TTL.
type RedisDrafts struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDrafts(client *redis.Client, ttl time.Duration) *RedisDrafts {
	return &RedisDrafts{client: client, ttl: ttl}
}

func draftKey(id string) string { return "estimates:draft:" + id }

func (r *RedisDrafts) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: get %s: %w", id, err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("drafts: decode %s: %w", id, err)
	}
	return &d, nil
}

func (r *RedisDrafts) Save(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("drafts: encode %s: %w", d.ID, err)
	}
	if err := r.client.Set(ctx, draftKey(d.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("drafts: save %s: %w", d.ID, err)
	}
	return nil
}

func (r *RedisDrafts) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, draftKey(id)).Err()
}
