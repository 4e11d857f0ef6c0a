package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*Repository, string) {
	path := filepath.Join(t.TempDir(), "carts.db")
	repo, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func sampleCart(id string) *entity.Cart {
	created := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)
	return &entity.Cart{
		ID: id,
		Lines: []entity.CartLine{
			{ItemID: "42", Name: "Mug", Price: 10, Quantity: 2},
			{ItemID: "43", Name: "Tea", Price: 5, Quantity: 1},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}
}

func TestRepository_PutGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	want := sampleCart("c1")
	require.NoError(t, repo.Put(ctx, want))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, want.Lines, got.Lines)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestRepository_PutUpsertKeepsCreatedAt(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	cart := sampleCart("c1")
	require.NoError(t, repo.Put(ctx, cart))

	original := cart.CreatedAt
	cart.CreatedAt = original.Add(time.Hour)
	cart.Lines[0].Quantity = 5
	require.NoError(t, repo.Put(ctx, cart))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Lines[0].Quantity)
	assert.True(t, original.Equal(got.CreatedAt))
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	cart := sampleCart("c1")
	assert.ErrorIs(t, repo.Update(ctx, cart), entity.ErrNotFound)
	_, err := repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	require.NoError(t, repo.Put(ctx, cart))
	cart.Lines = cart.Lines[:1]
	cart.Lines[0].Quantity = 4
	cart.UpdatedAt = cart.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, cart))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 4, got.Lines[0].Quantity)
	assert.True(t, cart.UpdatedAt.Equal(got.UpdatedAt))
	assert.True(t, cart.CreatedAt.Equal(got.CreatedAt))
}

func TestRepository_EmptyCart(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	cart := &entity.Cart{ID: "empty", Lines: []entity.CartLine{}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, repo.Put(ctx, cart))

	got, err := repo.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestRepository_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), entity.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, sampleCart("c1")))
	require.NoError(t, repo.Delete(ctx, "c1"))

	_, err := repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRepository_SurvivesReopen(t *testing.T) {
	repo, path := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, sampleCart("c1")))
	require.NoError(t, repo.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}
