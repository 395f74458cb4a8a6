package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopvision/internal/domain"
)

func TestMemorySnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySnapshot()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	in := Snapshot{
		Products:  []domain.Product{{ID: "p1", Name: "Cafetera", CostPrice: decimal.NewFromInt(75000), Stock: 8}},
		Margin:    decimal.NewFromInt(10),
		Overrides: map[string]decimal.Decimal{"p1": decimal.NewFromInt(70000)},
	}
	require.NoError(t, s.Save(ctx, in))

	// caller mutations after Save must not leak into the snapshot
	in.Products[0].Stock = 0
	in.Overrides["p1"] = decimal.Zero

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, 8, snap.Products[0].Stock)
	assert.True(t, snap.Margin.Equal(decimal.NewFromInt(10)))
	assert.True(t, snap.Overrides["p1"].Equal(decimal.NewFromInt(70000)))
	assert.False(t, snap.TakenAt.IsZero())
}

func TestRedisSnapshotUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := NewRedisSnapshot(client, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
	assert.Error(t, s.Save(ctx, Snapshot{}))
}
