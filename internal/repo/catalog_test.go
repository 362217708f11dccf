package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/testutil"
)

func names(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func TestListByPlatform_InStockOnlyOrderedByName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	testutil.CreateProduct(t, r.DB, "Starfield", 70, 2, "PC", "Xbox Series X")
	testutil.CreateProduct(t, r.DB, "Hades", 25, 4, "PC", "Nintendo Switch")
	testutil.CreateProduct(t, r.DB, "Gone", 10, 0, "PC")
	testutil.CreateProduct(t, r.DB, "Halo", 30, 3, "Xbox One")
	testutil.CreateProduct(t, r.DB, "Lowercase", 30, 3, "pc")

	items, err := r.ListByPlatform(ctx, "PC")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hades", "Starfield"}, names(items))

	items, err = r.ListByPlatform(ctx, "Xbox Series X")
	require.NoError(t, err)
	assert.Equal(t, []string{"Starfield"}, names(items))

	items, err = r.ListByPlatform(ctx, "Xbox")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchProducts_CaseInsensitiveSubstring(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	testutil.CreateProduct(t, r.DB, "The Witcher 3", 30, 2)
	testutil.CreateProduct(t, r.DB, "Cyberpunk 2077", 40, 0)
	p := testutil.CreateProduct(t, r.DB, "Hollow Knight", 15, 1)
	desc := "A witcher-free metroidvania at 100% speed"
	_, err := r.UpdateProduct(ctx, p.ID, ProductPatch{Description: &desc})
	require.NoError(t, err)

	items, err := r.SearchProducts(ctx, "WITCHER", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hollow Knight", "The Witcher 3"}, names(items))

	items, err = r.SearchProducts(ctx, "cyber", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cyberpunk 2077"}, names(items))

	items, err = r.SearchProducts(ctx, "100%", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hollow Knight"}, names(items))

	items, err = r.SearchProducts(ctx, "0%", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hollow Knight"}, names(items))

	items, err = r.SearchProducts(ctx, "e", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProductCRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	p := &models.Product{Name: "Elden Ring", Price: 59.99, Stock: 4, Platforms: []string{"PC", "PlayStation 5"}}
	require.NoError(t, r.CreateProduct(ctx, p))
	require.NotZero(t, p.ID)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"PC", "PlayStation 5"}, got.Platforms)

	name := "Elden Ring GOTY"
	platforms := []string{"PC"}
	upd, err := r.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name, Platforms: &platforms})
	require.NoError(t, err)
	assert.Equal(t, name, upd.Name)
	assert.Equal(t, platforms, upd.Platforms)
	assert.Equal(t, 4, upd.Stock)
	assert.InDelta(t, 59.99, upd.Price, 0.001)

	_, err = r.UpdateProduct(ctx, 999, ProductPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.GetProduct(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	total, items, err := r.ListProducts(ctx, ProductFilter{Query: "goty", Platform: "PC", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
}

func TestCreateProductsIfEmpty(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	batch := []models.Product{
		{ID: 10, Name: "A", Price: 1, Stock: 1, Platforms: []string{"PC"}},
		{ID: 11, Name: "B", Price: 2, Stock: 2, Platforms: []string{"PC"}},
	}
	n, err := r.CreateProductsIfEmpty(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.CreateProductsIfEmpty(ctx, []models.Product{{ID: 12, Name: "C", Price: 1, Platforms: []string{"PC"}}})
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := r.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	p, err := r.GetProduct(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)
}

func TestCreateProductsIfEmpty_TwoProcessesSeedOnce(t *testing.T) {
	dbs := testutil.NewSharedDBs(t, 2)
	ctx := context.Background()

	batch := func() []models.Product {
		return []models.Product{
			{ID: 1, Name: "Hades", Price: 25, Stock: 3, Platforms: []string{"PC"}},
			{ID: 2, Name: "Celeste", Price: 20, Stock: 2, Platforms: []string{"PC"}},
		}
	}

	var wg sync.WaitGroup
	written := make([]int, 2)
	errs := make([]error, 2)
	for i, gdb := range dbs {
		wg.Add(1)
		go func(i int, r *GormRepo) {
			defer wg.Done()
			written[i], errs[i] = r.CreateProductsIfEmpty(ctx, batch())
		}(i, New(gdb, 10*time.Second))
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 2, written[0]+written[1])
	assert.EqualValues(t, 2, testutil.Count(t, dbs[0], &models.Product{}))
}
