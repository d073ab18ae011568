// Package session owns the authenticated identity for the whole client.
// It keeps the current session in memory for synchronous reads and mirrors
// it into the durable store as a single versioned record, so ad hoc token
// keys never leak into other components.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/client/store"
	"github.com/parcel-ng/parcel-client/internal/dbx"
	"github.com/parcel-ng/parcel-client/internal/logging"
)

// recordVersion is bumped when the persisted session layout changes.
// Records with an unknown version load as logged out.
const recordVersion = 1

type record struct {
	Version      int         `json:"version"`
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// Store holds at most one active session. All methods are safe for
// concurrent use; CurrentUser and CurrentToken never block on I/O.
type Store struct {
	mu   sync.RWMutex
	sess *models.Session

	db  *sql.DB
	log logging.Logger

	// now is a test seam for token expiry checks.
	now func() time.Time
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log.With("component", "session"), now: time.Now}
}

func (s *Store) repo(db dbx.DBTX) store.Repository {
	return store.NewSQLiteRepository(db)
}

// Load restores the persisted session, if any. A missing, corrupted, or
// expired record results in the logged-out state; Load never propagates
// storage corruption to the caller.
func (s *Store) Load(ctx context.Context) {
	data, err := s.repo(s.db).Get(ctx, store.KeySession)
	if err != nil || len(data) == 0 {
		if err != nil {
			s.log.Warn(ctx, "could not read persisted session", "error", err)
		}
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn(ctx, "persisted session is corrupted, discarding", "error", err)
		_ = s.repo(s.db).Delete(ctx, store.KeySession)
		return
	}
	if rec.Version != recordVersion || rec.AccessToken == "" || rec.User.ID == "" {
		s.log.Warn(ctx, "persisted session is incomplete, discarding", "version", rec.Version)
		_ = s.repo(s.db).Delete(ctx, store.KeySession)
		return
	}
	if s.tokenExpired(rec.AccessToken) {
		s.log.Info(ctx, "persisted session expired, discarding")
		_ = s.repo(s.db).Delete(ctx, store.KeySession)
		return
	}

	s.mu.Lock()
	s.sess = &models.Session{User: rec.User, AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
	s.mu.Unlock()
}

// tokenExpired inspects the access token's exp claim without verifying the
// signature; only the server can verify, the client just avoids presenting
// a token it knows is stale. Tokens that do not parse count as expired.
func (s *Store) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim: let the server decide.
		return false
	}
	return exp.Before(s.now())
}

// Login stores the session in memory and persists it. The pending
// verification record is consumed in the same transaction: a successful
// sign-in or verification supersedes any in-progress OTP flow.
func (s *Store) Login(ctx context.Context, user models.User, accessToken, refreshToken string) error {
	rec := record{Version: recordVersion, User: user, AccessToken: accessToken, RefreshToken: refreshToken}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, store.KeySession, data); err != nil {
			return err
		}
		return repo.Delete(ctx, store.KeyPendingVerification)
	})
	if err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	s.mu.Lock()
	s.sess = &models.Session{User: user, AccessToken: accessToken, RefreshToken: refreshToken}
	s.mu.Unlock()

	s.log.Info(ctx, "session established", "user", user.Email, "role", user.Role)
	return nil
}

// Logout clears the in-memory and persisted session. Idempotent; no
// network call is made.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.repo(s.db).Delete(ctx, store.KeySession); err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}

	s.mu.Lock()
	s.sess = nil
	s.mu.Unlock()
	return nil
}

// CurrentUser returns the authenticated user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return models.User{}, false
	}
	return s.sess.User, true
}

// CurrentToken returns the access token or an empty string when logged out.
// It satisfies api.TokenSource.
func (s *Store) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.AccessToken
}

// RefreshToken returns the refresh token or an empty string when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.RefreshToken
}
