package tokens_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovolkov/pawhub/internal/client/repositories/tokens"
	"github.com/ovolkov/pawhub/internal/client/storage"

	_ "modernc.org/sqlite"
)

var dbSeq int

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:tokens_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(context.Background(), db))
	return db
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	repo := tokens.NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, tokens.KeyAccessToken, []byte("token-1")))

	got, err := repo.Get(ctx, tokens.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, []byte("token-1"), got)
}

func TestGet_MissingKeyReturnsNil(t *testing.T) {
	ctx := context.Background()
	repo := tokens.NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(ctx, "no-such-key")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSet_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	repo := tokens.NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, tokens.KeyRefreshToken, []byte("old")))
	require.NoError(t, repo.Set(ctx, tokens.KeyRefreshToken, []byte("new")))

	got, err := repo.Get(ctx, tokens.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := tokens.NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, tokens.KeyAccessToken, []byte("token")))
	require.NoError(t, repo.Delete(ctx, tokens.KeyAccessToken))

	got, err := repo.Get(ctx, tokens.KeyAccessToken)
	require.NoError(t, err)
	require.Nil(t, got)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, tokens.KeyAccessToken))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	ctx := context.Background()
	repo := tokens.NewSQLiteRepository(setupDB(t))

	require.NoError(t, repo.Set(ctx, tokens.KeyAccessToken, []byte("a")))
	require.NoError(t, repo.Set(ctx, tokens.KeyRefreshToken, []byte("r")))
	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{tokens.KeyAccessToken, tokens.KeyRefreshToken} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}
