//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gadgetph/phone-catalog/internal/catalog"
	"github.com/gadgetph/phone-catalog/internal/store"
)

func setupPostgres(t *testing.T) *store.PostgresSource {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("spc_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresSource(ctx, connStr, 5)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func testProduct(id, title string) catalog.RawProduct {
	return catalog.RawProduct{
		ID:        id,
		Title:     title,
		Type:      "simple",
		Price:     "18290",
		Permalink: "https://example.com/" + id,
		Terms: []catalog.Term{
			{Slug: "mobile-phones", Name: "Mobile Phones"},
			{Slug: "samsung", Name: "Samsung"},
		},
		Tags: []string{"editor-pick"},
		Attributes: []catalog.Attribute{
			{Name: "pa_internal-memory", Value: "256GB 12GB RAM"},
		},
	}
}

func TestPostgresSource_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresSource_CountAndList(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.SeedProducts(ctx, []catalog.RawProduct{
		testProduct("100", "Galaxy A55"),
		testProduct("101", "Galaxy S24"),
		testProduct("102", "Galaxy A15"),
	}))

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	products, err := s.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)

	// Stable id order.
	assert.Equal(t, "100", products[0].ID)
	assert.Equal(t, "101", products[1].ID)

	// Relations are loaded with source ordering.
	require.Len(t, products[0].Terms, 2)
	assert.Equal(t, "mobile-phones", products[0].Terms[0].Slug)
	assert.Equal(t, []string{"editor-pick"}, products[0].Tags)
	require.Len(t, products[0].Attributes, 1)
	assert.Equal(t, "pa_internal-memory", products[0].Attributes[0].Name)
}

func TestPostgresSource_ListPastEnd(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, s.SeedProducts(ctx, []catalog.RawProduct{
		testProduct("100", "Galaxy A55"),
	}))

	products, err := s.List(ctx, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestPostgresSource_SeedIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	p := testProduct("100", "Galaxy A55")
	require.NoError(t, s.SeedProducts(ctx, []catalog.RawProduct{p}))

	p.Title = "Galaxy A55 5G"
	require.NoError(t, s.SeedProducts(ctx, []catalog.RawProduct{p}))

	total, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	products, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Galaxy A55 5G", products[0].Title)
}
