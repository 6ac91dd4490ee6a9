//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres/pgtest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db := pgtest.New(t)

	applied, err := postgres.Migrate(context.Background(), db)
	require.NoError(t, err)
	require.Empty(t, applied, "second run must not reapply")

	var n int
	require.NoError(t, db.QueryRow(context.Background(), `SELECT count(*) FROM schema_migrations`).Scan(&n))
	require.Equal(t, 1, n)
}
