package session

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/client/store"
	"github.com/parcel-ng/parcel-client/internal/logging"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T, db *sql.DB) *Store {
	t.Helper()
	return NewStore(db, logging.NewDefault(io.Discard, slog.LevelDebug))
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func rider() models.User {
	return models.User{ID: "u1", FirstName: "Ade", Email: "ade@x.com", Role: models.RoleRider}
}

func TestLoad_NoRecord_LoggedOut(t *testing.T) {
	s := newStore(t, setupDB(t))
	s.Load(context.Background())

	_, ok := s.CurrentUser()
	require.False(t, ok)
	require.Empty(t, s.CurrentToken())
}

func TestLoad_CorruptedRecord_LoggedOutAndDiscarded(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := store.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, store.KeySession, []byte("{not json")))

	s := newStore(t, db)
	s.Load(ctx)

	_, ok := s.CurrentUser()
	require.False(t, ok)

	v, err := repo.Get(ctx, store.KeySession)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestLoad_UnknownVersion_LoggedOut(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := store.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, store.KeySession,
		[]byte(`{"version":99,"user":{"_id":"u1"},"accessToken":"x"}`)))

	s := newStore(t, db)
	s.Load(ctx)

	_, ok := s.CurrentUser()
	require.False(t, ok)
}

func TestLoad_ExpiredToken_LoggedOut(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), signToken(t, time.Now().Add(-time.Hour)), "rt"))

	reloaded := newStore(t, db)
	reloaded.Load(ctx)

	_, ok := reloaded.CurrentUser()
	require.False(t, ok)
}

func TestLoginLoad_RoundTrip(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	tok := signToken(t, time.Now().Add(time.Hour))

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), tok, "rt"))

	u, ok := s.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "ade@x.com", u.Email)
	require.Equal(t, tok, s.CurrentToken())
	require.Equal(t, "rt", s.RefreshToken())

	reloaded := newStore(t, db)
	reloaded.Load(ctx)
	u, ok = reloaded.CurrentUser()
	require.True(t, ok)
	require.Equal(t, models.RoleRider, u.Role)
}

func TestLogin_OpaqueTokenWithoutExp_StillLoads(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	tok := signToken(t, time.Time{})

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), tok, ""))

	reloaded := newStore(t, db)
	reloaded.Load(ctx)
	_, ok := reloaded.CurrentUser()
	require.True(t, ok)
}

func TestLogin_ConsumesPendingVerification(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := store.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, store.KeyPendingVerification, []byte(`{"email":"ade@x.com"}`)))

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), signToken(t, time.Now().Add(time.Hour)), ""))

	v, err := repo.Get(ctx, store.KeyPendingVerification)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), signToken(t, time.Now().Add(time.Hour)), "r1"))

	other := models.User{ID: "u2", Email: "b@x.com", Role: models.RoleUser}
	tok2 := signToken(t, time.Now().Add(2*time.Hour))
	require.NoError(t, s.Login(ctx, other, tok2, "r2"))

	u, ok := s.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "u2", u.ID)
	require.Equal(t, tok2, s.CurrentToken())
}

func TestLogout_Idempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	s := newStore(t, db)
	require.NoError(t, s.Login(ctx, rider(), signToken(t, time.Now().Add(time.Hour)), ""))

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	_, ok := s.CurrentUser()
	require.False(t, ok)
	require.Empty(t, s.CurrentToken())
}
