//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"player_rotation/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against PostgreSQL
// Run with: TEST_DATABASE_URL=postgres://... go test -v -tags=integration ./internal/repository/...

func setupPostgresDB(t *testing.T) (*Database, context.Context) {
	t.Helper()
	ctx := context.Background()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := Open(ctx, url)
	require.NoError(t, err, "Failed to connect to test database")
	require.Equal(t, DialectPostgres, db.Dialect)

	_, err = db.DB.ExecContext(ctx, `TRUNCATE players, country_tracker RESTART IDENTITY`)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	return db, ctx
}

func TestPostgres_AddCountryBatch(t *testing.T) {
	db, ctx := setupPostgresDB(t)

	added, err := db.AddCountryBatch(ctx, "Japan", []models.Player{
		{ID: "1", Name: "Kaori", Country: "Japan"},
		{ID: "2", Name: "Ren", Country: "Japan"},
		{ID: "3", Name: "Sora", Country: "Japan"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	count, err := db.Players.CountByCountry(ctx, "Japan")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	last, ok, err := db.LastAddedCountry(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Japan", last)
}

func TestPostgres_OpenIdempotent(t *testing.T) {
	db, ctx := setupPostgresDB(t)

	_, err := db.AddCountryBatch(ctx, "Chile", []models.Player{{ID: "9", Country: "Chile"}})
	require.NoError(t, err)

	again, err := Open(ctx, os.Getenv("TEST_DATABASE_URL"))
	require.NoError(t, err)
	defer again.Close()

	count, err := again.Players.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
