// Package otp drives the multi-step email verification used by both
// signup and password reset: request a code, submit it, follow the
// purpose-specific route afterwards. The flow is a small tagged state
// machine instead of per-form flag juggling.
package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/client/store"
	"github.com/parcel-ng/parcel-client/internal/common"
	"github.com/parcel-ng/parcel-client/internal/logging"
	"github.com/parcel-ng/parcel-client/internal/validate"
)

// State of the verification flow.
type State string

const (
	StateIdle      State = "idle"
	StateRequested State = "requested"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
)

// Post-verification routes. Values match the backend's navigation targets.
const (
	RouteHome            = "/user/home"
	RouteCreatePassword  = "/authentication/create-password"
	RouteRiderOnboarding = "/authentication/signup/rider/verify"
)

// ErrSubmitInFlight is returned when a submission is already being verified.
var ErrSubmitInFlight = errors.New("verification already in progress")

// Backend is the remote surface the flow needs.
type Backend interface {
	VerifyEmail(ctx context.Context, otp, email string) (*models.Session, error)
	ResendVerificationOTP(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, otp, password string) error
}

// SessionStore is the slice of the session layer the flow needs on success.
type SessionStore interface {
	Login(ctx context.Context, user models.User, accessToken, refreshToken string) error
}

// Flow is the OTP verification controller. One pending verification at a
// time; a later request overwrites the earlier one.
type Flow struct {
	backend  Backend
	sessions SessionStore
	repo     store.Repository
	log      logging.Logger

	mu        sync.Mutex
	state     State
	pending   *models.PendingVerification
	lastRoute string
	lastErr   error
}

func NewFlow(backend Backend, sessions SessionStore, repo store.Repository, log logging.Logger) *Flow {
	return &Flow{
		backend:  backend,
		sessions: sessions,
		repo:     repo,
		log:      log.With("component", "otp"),
		state:    StateIdle,
	}
}

// Restore picks up a pending verification persisted by an earlier run.
// Corrupted records are discarded and the flow stays Idle.
func (f *Flow) Restore(ctx context.Context) {
	data, err := f.repo.Get(ctx, store.KeyPendingVerification)
	if err != nil || len(data) == 0 {
		return
	}
	var p models.PendingVerification
	if err := json.Unmarshal(data, &p); err != nil || p.Email == "" {
		_ = f.repo.Delete(ctx, store.KeyPendingVerification)
		return
	}
	if p.NextRoute == "" {
		p.NextRoute = RouteHome
	}

	f.mu.Lock()
	f.pending = &p
	f.state = StateRequested
	f.mu.Unlock()
}

// routeFor picks the post-verification route for a purpose.
func routeFor(purpose models.VerificationPurpose) string {
	if purpose == models.PurposePasswordReset {
		return RouteCreatePassword
	}
	return RouteRiderOnboarding
}

// Begin records a pending verification without a network call, for flows
// where the backend has already dispatched the code (rider registration
// sends one as a side effect).
func (f *Flow) Begin(ctx context.Context, email string, purpose models.VerificationPurpose) error {
	return f.setPending(ctx, &models.PendingVerification{
		Email:     email,
		Purpose:   purpose,
		NextRoute: routeFor(purpose),
	})
}

// RequestOTP asks the backend to send a one-time code to email. On success
// the flow moves to Requested and records the pending verification; on
// failure it stays Idle and the backend's message is returned unchanged.
func (f *Flow) RequestOTP(ctx context.Context, email string, purpose models.VerificationPurpose) error {
	if !validate.Email(email) {
		return common.ErrInvalidEmailFormat
	}

	var err error
	if purpose == models.PurposePasswordReset {
		err = f.backend.RequestPasswordReset(ctx, email)
	} else {
		err = f.backend.ResendVerificationOTP(ctx, email)
	}
	if err != nil {
		f.log.Warn(ctx, "otp request failed", "purpose", purpose, "error", err)
		return err
	}

	return f.Begin(ctx, email, purpose)
}

func (f *Flow) setPending(ctx context.Context, p *models.PendingVerification) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding pending verification: %w", err)
	}
	if err := f.repo.Set(ctx, store.KeyPendingVerification, data); err != nil {
		return err
	}

	f.mu.Lock()
	f.pending = p
	f.state = StateRequested
	f.lastErr = nil
	f.mu.Unlock()
	return nil
}

// ResendOTP re-issues the code for the current pending verification. It can
// be called any number of times and does not reset the pending record.
func (f *Flow) ResendOTP(ctx context.Context) error {
	f.mu.Lock()
	p := f.pending
	f.mu.Unlock()
	if p == nil {
		return common.ErrNoPendingVerification
	}

	if p.Purpose == models.PurposePasswordReset {
		return f.backend.RequestPasswordReset(ctx, p.Email)
	}
	return f.backend.ResendVerificationOTP(ctx, p.Email)
}

// SubmitOTP verifies code and returns the route to follow next.
//
// A code that is not exactly 6 digits is rejected locally; no request is
// made. Submitting again after Verified is a no-op returning the same
// route. For the password-reset purpose the code is stored locally as the
// reset credential and the flow moves straight to Verified without calling
// the backend; the true validation happens when the new password is
// submitted, so a wrong code only surfaces at that point.
func (f *Flow) SubmitOTP(ctx context.Context, code string) (string, error) {
	f.mu.Lock()
	switch f.state {
	case StateVerified:
		route := f.lastRoute
		f.mu.Unlock()
		return route, nil
	case StateVerifying:
		f.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	if !validate.OTP(code) {
		f.mu.Unlock()
		return "", common.ErrInvalidOTPFormat
	}
	if f.pending == nil {
		f.mu.Unlock()
		return "", common.ErrNoPendingVerification
	}
	p := *f.pending

	if p.Purpose == models.PurposePasswordReset {
		f.mu.Unlock()
		return f.acceptResetCode(ctx, code, p)
	}

	f.state = StateVerifying
	f.mu.Unlock()

	sess, err := f.backend.VerifyEmail(ctx, code, p.Email)
	if err != nil {
		f.mu.Lock()
		f.state = StateFailed
		f.lastErr = err
		f.mu.Unlock()
		f.log.Warn(ctx, "email verification failed", "email", p.Email, "error", err)
		return "", err
	}

	if err := f.sessions.Login(ctx, sess.User, sess.AccessToken, sess.RefreshToken); err != nil {
		f.mu.Lock()
		f.state = StateFailed
		f.lastErr = err
		f.mu.Unlock()
		return "", err
	}

	route := p.NextRoute
	if sess.User.Role == models.RoleRider {
		route = RouteRiderOnboarding
	}

	f.mu.Lock()
	f.state = StateVerified
	f.pending = nil
	f.lastRoute = route
	f.lastErr = nil
	f.mu.Unlock()

	f.log.Info(ctx, "email verified", "email", p.Email, "role", sess.User.Role)
	return route, nil
}

// acceptResetCode stores the 6-digit code as the local reset credential and
// consumes the pending record. No network round trip happens here.
func (f *Flow) acceptResetCode(ctx context.Context, code string, p models.PendingVerification) (string, error) {
	if err := f.repo.Set(ctx, store.KeyResetOTP, []byte(code)); err != nil {
		return "", err
	}
	_ = f.repo.Delete(ctx, store.KeyPendingVerification)

	f.mu.Lock()
	f.state = StateVerified
	f.pending = nil
	f.lastRoute = p.NextRoute
	f.lastErr = nil
	f.mu.Unlock()

	f.log.Info(ctx, "reset code accepted", "email", p.Email)
	return p.NextRoute, nil
}

// CompletePasswordReset finishes the password-reset flow using the locally
// stored code. Password mismatch and strength problems are caught before
// any network call; on success the reset credential is cleared and the
// flow returns to Idle.
func (f *Flow) CompletePasswordReset(ctx context.Context, password, confirm string) error {
	if password != confirm {
		return common.ErrPasswordMismatch
	}
	if !validate.CheckPassword(password).AllMet() {
		return common.ErrWeakPassword
	}

	code, err := f.repo.Get(ctx, store.KeyResetOTP)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return common.ErrNoResetCredential
	}

	if err := f.backend.ResetPassword(ctx, string(code), password); err != nil {
		f.log.Warn(ctx, "password reset failed", "error", err)
		return err
	}

	_ = f.repo.Delete(ctx, store.KeyResetOTP)

	f.mu.Lock()
	f.state = StateIdle
	f.lastRoute = ""
	f.mu.Unlock()

	f.log.Info(ctx, "password reset completed")
	return nil
}

// Abandon drops the pending verification and returns the flow to Idle.
func (f *Flow) Abandon(ctx context.Context) error {
	err := f.repo.Delete(ctx, store.KeyPendingVerification)

	f.mu.Lock()
	f.pending = nil
	f.state = StateIdle
	f.lastRoute = ""
	f.lastErr = nil
	f.mu.Unlock()
	return err
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error recorded by the last failed verification.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Pending returns a copy of the active pending verification, if any.
func (f *Flow) Pending() (models.PendingVerification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return models.PendingVerification{}, false
	}
	return *f.pending, true
}
