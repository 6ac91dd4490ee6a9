//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/auth"
	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/postgres/pgtest"
)

func TestRepoUsers(t *testing.T) {
	ctx := context.Background()
	repo := &auth.Repo{DB: pgtest.New(t)}

	ann, err := repo.CreateUser(ctx, "Ann", "ann@shop.test", "h1")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "Dup", "ann@shop.test", "h2")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	bob, err := repo.CreateUser(ctx, "Bob", "bob@shop.test", "h3")
	require.NoError(t, err)

	got, hash, err := repo.UserByEmail(ctx, "ann@shop.test")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)
	assert.Equal(t, "h1", hash)
	assert.Nil(t, got.LastLogin)

	at := time.Now().UTC().Truncate(time.Second)
	got, err = repo.RecordLogin(ctx, ann.ID, at)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LoginCount)
	assert.True(t, at.Equal(*got.LastLogin))

	require.NoError(t, repo.SetUserPassword(ctx, "ann@shop.test", "h9"))
	_, hash, _ = repo.UserByEmail(ctx, "ann@shop.test")
	assert.Equal(t, "h9", hash)
	assert.ErrorIs(t, repo.SetUserPassword(ctx, "ghost@shop.test", "x"), apperr.ErrNotFound)

	list, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, bob.ID, list[0].ID)

	byID, err := repo.UserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", byID.Name)
}

func TestRepoAdmins(t *testing.T) {
	ctx := context.Background()
	repo := &auth.Repo{DB: pgtest.New(t)}

	_, err := repo.AdminByID(ctx, "root")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	a, err := repo.CreateAdmin(ctx, auth.Admin{AdminID: "root", Email: "ops@shop.test", PasswordHash: "h"})
	require.NoError(t, err)
	again, err := repo.CreateAdmin(ctx, auth.Admin{AdminID: "root", Email: "other@shop.test", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.Equal(t, a, again)

	a.PasswordHash = "h3"
	require.NoError(t, repo.UpdateAdmin(ctx, a))
	got, err := repo.AdminByID(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
	assert.ErrorIs(t, repo.UpdateAdmin(ctx, auth.Admin{AdminID: "ghost"}), apperr.ErrNotFound)
}
