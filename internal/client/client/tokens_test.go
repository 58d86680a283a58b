package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/repositories/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	s := &MemoryTokenStore{}

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Empty())

	want := models.Credentials{AccessToken: "a", RefreshToken: "r"}
	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestRepositoryTokenStore_IsolatedPerServer(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := credentials.NewSQLiteRepository(db)
	a := NewRepositoryTokenStore(repo, "a:1")
	b := NewRepositoryTokenStore(repo, "b:1")

	empty, err := a.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	want := models.Credentials{AccessToken: "at", RefreshToken: "rt", RefreshExpiresAt: time.Unix(1_900_000_000, 0)}
	require.NoError(t, a.Save(ctx, want))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.RefreshToken, got.RefreshToken)
	assert.True(t, want.RefreshExpiresAt.Equal(got.RefreshExpiresAt))

	other, err := b.Load(ctx)
	require.NoError(t, err)
	assert.True(t, other.Empty())

	require.NoError(t, a.Clear(ctx))
	got, err = a.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
