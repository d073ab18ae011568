package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), "file:storetest?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Migrations may have run in a previous test against the shared cache.
	_, err = db.Exec(`DELETE FROM storage`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingKey_ReturnsNilNil(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	v, err := repo.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSetGet_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeySession, []byte(`{"version":1}`)))

	v, err := repo.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"version":1}`), v)
}

func TestSet_OverwritesExistingValue(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyResetOTP, []byte("111111")))
	require.NoError(t, repo.Set(ctx, KeyResetOTP, []byte("222222")))

	v, err := repo.Get(ctx, KeyResetOTP)
	require.NoError(t, err)
	require.Equal(t, []byte("222222"), v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyPendingVerification, []byte("x")))
	require.NoError(t, repo.Delete(ctx, KeyPendingVerification))
	require.NoError(t, repo.Delete(ctx, KeyPendingVerification))

	v, err := repo.Get(ctx, KeyPendingVerification)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestClear_RemovesEverything(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeySession, []byte("a")))
	require.NoError(t, repo.Set(ctx, KeyResetOTP, []byte("b")))
	require.NoError(t, repo.Clear(ctx))

	for _, k := range []string{KeySession, KeyResetOTP} {
		v, err := repo.Get(ctx, k)
		require.NoError(t, err)
		require.Nil(t, v)
	}
}
