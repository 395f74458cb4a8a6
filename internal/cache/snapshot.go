// Package cache keeps the last good product list so the public catalog can
// still render when the catalog store is unavailable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
)

// SnapshotKey is the Redis key holding the master product snapshot.
const SnapshotKey = "catalog:snapshot"

var ErrNoSnapshot = errors.New("no catalog snapshot")

// Snapshot holds the product list together with the pricing settings that
// were in force when it was taken.
type Snapshot struct {
	Products  []domain.Product           `json:"products"`
	Margin    decimal.Decimal            `json:"margin"`
	Overrides map[string]decimal.Decimal `json:"overrides,omitempty"`
	TakenAt   time.Time                  `json:"taken_at"`
}

// stamped copies snap, fills TakenAt when unset.
func stamped(snap Snapshot) Snapshot {
	out := Snapshot{
		Products:  make([]domain.Product, len(snap.Products)),
		Margin:    snap.Margin,
		Overrides: make(map[string]decimal.Decimal, len(snap.Overrides)),
		TakenAt:   snap.TakenAt,
	}
	copy(out.Products, snap.Products)
	for id, amount := range snap.Overrides {
		out.Overrides[id] = amount
	}
	if out.TakenAt.IsZero() {
		out.TakenAt = time.Now().UTC()
	}
	return out
}

type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	// Load returns ErrNoSnapshot when nothing was saved yet (or it expired).
	Load(ctx context.Context) (Snapshot, error)
}

type RedisSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshot stores the snapshot under SnapshotKey. A zero ttl keeps
// it until overwritten.
func NewRedisSnapshot(client *redis.Client, ttl time.Duration) *RedisSnapshot {
	return &RedisSnapshot{client: client, ttl: ttl}
}

func (s *RedisSnapshot) Save(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(stamped(snap))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, SnapshotKey, b, s.ttl).Err()
}

func (s *RedisSnapshot) Load(ctx context.Context) (Snapshot, error) {
	b, err := s.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// MemorySnapshot is the process-local fallback when Redis is not configured.
type MemorySnapshot struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewMemorySnapshot() *MemorySnapshot { return &MemorySnapshot{} }

func (s *MemorySnapshot) Save(_ context.Context, snap Snapshot) error {
	cp := stamped(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &cp
	return nil
}

func (s *MemorySnapshot) Load(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return stamped(*s.snap), nil
}
