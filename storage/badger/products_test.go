package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) (storage.ProductRepository, storage.PlacementRepository) {
	t.Helper()
	products, places, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		products.Close()
		places.Close()
		backend.Close()
	})
	return products, places
}

func TestAddProducts_GeneratesIDs(t *testing.T) {
	products, _ := setupRepos(t)
	ctx := context.Background()

	added, err := products.AddProducts(ctx,
		&core.Product{Name: "Old Oak Reserve"},
		&core.Product{Name: "Hedgerow Gin", Category: "Spirits"},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)
	assert.NotEqual(t, added[0].Id, added[1].Id)
	assert.False(t, added[0].InsertedAt.IsZero())
	assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)
}

func TestAddProducts_SkipsClaimedIDs(t *testing.T) {
	products, _ := setupRepos(t)
	ctx := context.Background()

	_, err := products.AddProducts(ctx, &core.Product{Id: 1, Name: "Imported"})
	require.NoError(t, err)

	added, err := products.AddProducts(ctx, &core.Product{Name: "Inline"})
	require.NoError(t, err)
	assert.NotEqual(t, core.ID(1), added[0].Id)

	got, err := products.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Imported", got.Name)
}

func TestAddProducts_ReimportKeepsProgress(t *testing.T) {
	products, _ := setupRepos(t)
	ctx := context.Background()

	_, err := products.AddProducts(ctx, &core.Product{Id: 42, Name: "Old Oak Reserve"})
	require.NoError(t, err)
	first, err := products.GetProduct(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, products.MarkProcessed(ctx, 42))

	time.Sleep(time.Millisecond)
	_, err = products.AddProducts(ctx, &core.Product{Id: 42, Name: "Old Oak Reserve", Producer: "Acme"})
	require.NoError(t, err)

	got, err := products.GetProduct(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Producer)
	assert.True(t, got.Processed)
	assert.Equal(t, first.InsertedAt, got.InsertedAt)
	assert.True(t, got.UpdatedAt.After(first.UpdatedAt))
}

func TestAddProducts_Invalid(t *testing.T) {
	products, _ := setupRepos(t)

	_, err := products.AddProducts(context.Background(), &core.Product{Producer: "Acme"})
	assert.ErrorIs(t, err, core.ErrInvalidProduct)
}

func TestGetProduct_NotFound(t *testing.T) {
	products, _ := setupRepos(t)

	_, err := products.GetProduct(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, products.MarkProcessed(context.Background(), 999), storage.ErrNotFound)
}

func TestListProducts(t *testing.T) {
	products, _ := setupRepos(t)
	ctx := context.Background()

	_, err := products.AddProducts(ctx,
		&core.Product{Id: 300, Name: "C"},
		&core.Product{Id: 2, Name: "A"},
		&core.Product{Id: 10, Name: "B"},
	)
	require.NoError(t, err)
	require.NoError(t, products.MarkProcessed(ctx, 10))

	all, err := products.ListProducts(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []core.ID{2, 10, 300}, []core.ID{all[0].Id, all[1].Id, all[2].Id})

	pending, err := products.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "A", pending[0].Name)
	assert.Equal(t, "C", pending[1].Name)
}

func TestPlacements_SaveReplaceGet(t *testing.T) {
	_, places := setupRepos(t)
	ctx := context.Background()
	rating := 4.0

	got, err := places.GetPlacements(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = places.SavePlacements(ctx, 5, []core.Placement{
		{Rank: 2, StoreName: "Waitrose", Tier: core.TierLikely, Score: 85},
		{Rank: 1, StoreName: "Majestic", URL: "https://m.example", Tier: core.TierVerified, Score: 95, Rating: &rating},
	})
	require.NoError(t, err)

	got, err = places.GetPlacements(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Majestic", got[0].StoreName)
	assert.Equal(t, core.ID(5), got[0].ProductID)
	require.NotNil(t, got[0].Rating)
	assert.Equal(t, "Waitrose", got[1].StoreName)

	err = places.SavePlacements(ctx, 5, []core.Placement{
		{Rank: 1, StoreName: "Generic UK Beverage Retailer", Tier: core.TierSuggested},
	})
	require.NoError(t, err)
	got, err = places.GetPlacements(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.TierSuggested, got[0].Tier)

	require.NoError(t, places.SavePlacements(ctx, 5, nil))
	got, err = places.GetPlacements(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPlacements_RejectsInvalid(t *testing.T) {
	_, places := setupRepos(t)

	err := places.SavePlacements(context.Background(), 1, []core.Placement{
		{Rank: 1, StoreName: "Tesco", Tier: core.TierRejected},
	})
	assert.ErrorIs(t, err, core.ErrInvalidPlacement)
}
