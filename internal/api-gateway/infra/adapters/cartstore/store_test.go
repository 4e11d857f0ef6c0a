package cartstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
	"github.com/jcmexdev/storefront-gateway/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCart(id string) *entity.Cart {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &entity.Cart{
		ID: id,
		Lines: []entity.CartLine{
			{ItemID: "a", Name: "Lamp", Price: 10, Quantity: 2},
			{ItemID: "b", Name: "Rug", Price: 5.5, Quantity: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func exerciseStore(t *testing.T, store ports.CartStore) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		want := testCart("c1")
		require.NoError(t, store.Put(ctx, want))

		got, err := store.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Lines, got.Lines)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("put replaces", func(t *testing.T) {
		cart := testCart("c2")
		require.NoError(t, store.Put(ctx, cart))

		cart.Lines[0].Quantity = 7
		require.NoError(t, store.Put(ctx, cart))

		got, err := store.Get(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, 7, got.Lines[0].Quantity)
		assert.Len(t, got.Lines, 2)
	})

	t.Run("update existing", func(t *testing.T) {
		cart := testCart("c4")
		require.NoError(t, store.Put(ctx, cart))

		cart.Lines[0].Quantity = 9
		require.NoError(t, store.Update(ctx, cart))

		got, err := store.Get(ctx, "c4")
		require.NoError(t, err)
		assert.Equal(t, 9, got.Lines[0].Quantity)
	})

	t.Run("update never recreates", func(t *testing.T) {
		cart := testCart("c5")
		require.NoError(t, store.Put(ctx, cart))
		require.NoError(t, store.Delete(ctx, "c5"))

		assert.ErrorIs(t, store.Update(ctx, cart), entity.ErrNotFound)
		_, err := store.Get(ctx, "c5")
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, testCart("c3")))
		require.NoError(t, store.Delete(ctx, "c3"))

		_, err := store.Get(ctx, "c3")
		assert.ErrorIs(t, err, entity.ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "c3"), entity.ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	cart := testCart("c1")
	require.NoError(t, store.Put(ctx, cart))

	cart.Lines[0].Quantity = 99
	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Lines[0].Quantity)

	got.Lines[0].Quantity = 42
	again, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)
	assert.Equal(t, 1, store.Len())
}

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(cache.NewRedisCache(client, "gateway"), ttl), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	exerciseStore(t, store)
}

func TestRedisStore_KeyLayoutAndTTL(t *testing.T) {
	store, mr := setupRedisStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testCart("c1")))

	assert.True(t, mr.Exists("gateway:cart:c1"))
	assert.Equal(t, time.Hour, mr.TTL("gateway:cart:c1"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "c1")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRedisStore_UpdateAfterExpiry(t *testing.T) {
	store, mr := setupRedisStore(t, time.Hour)
	ctx := context.Background()
	cart := testCart("c1")
	require.NoError(t, store.Put(ctx, cart))

	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Update(ctx, cart))
	assert.Equal(t, time.Hour, mr.TTL("gateway:cart:c1"))

	mr.FastForward(2 * time.Hour)
	assert.ErrorIs(t, store.Update(ctx, cart), entity.ErrNotFound)
	assert.False(t, mr.Exists("gateway:cart:c1"))
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	store, mr := setupRedisStore(t, 0)
	require.NoError(t, mr.Set("gateway:cart:bad", "{not json"))

	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, entity.ErrNotFound)
}
