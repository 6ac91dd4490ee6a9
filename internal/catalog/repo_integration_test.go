//go:build integration

package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/catalog"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres/pgtest"
)

func TestRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := &catalog.Repo{DB: pgtest.New(t)}

	lamp, err := repo.Create(ctx, catalog.NewProduct{
		Title: "Desk Lamp", Description: "warm light", Category: "Home",
		Price: decimal.RequireFromString("100.00"), Stock: 5, SKU: "lamp-1",
		Images: []string{"https://cdn.test/lamp.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "LAMP-1", lamp.SKU)
	assert.Equal(t, "https://cdn.test/lamp.jpg", lamp.Image)

	_, err = repo.Create(ctx, catalog.NewProduct{
		Title: "Other", Price: decimal.NewFromInt(1), SKU: "LAMP-1 ", Images: []string{"u"},
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = repo.Create(ctx, catalog.NewProduct{
		Title: "Mug", Category: "kitchen", Price: decimal.NewFromInt(50), SKU: "MUG-1", Images: []string{"u"},
	})
	require.NoError(t, err)

	got, err := repo.List(ctx, catalog.Filter{Search: "WARM"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lamp.ID, got[0].ID)

	got, err = repo.List(ctx, catalog.Filter{Category: "HOME"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MUG-1", got[0].SKU, "newest first")

	price := decimal.RequireFromString("120.50")
	updated, err := repo.Update(ctx, lamp.ID, catalog.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Desk Lamp", updated.Title)

	require.NoError(t, repo.Delete(ctx, lamp.ID))
	assert.ErrorIs(t, repo.Delete(ctx, lamp.ID), apperr.ErrNotFound)
	_, err = repo.Get(ctx, lamp.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
