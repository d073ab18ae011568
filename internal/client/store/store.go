// Package store is the durable client-side storage: a single sqlite-backed
// key/value table holding the versioned session record, the pending
// verification record, and the reset credential.
package store

import "context"

// Well-known storage keys. Values are JSON documents except KeyResetOTP,
// which holds the raw 6-digit code.
const (
	KeySession             = "session"
	KeyPendingVerification = "pending_verification"
	KeyResetOTP            = "reset_otp"
)

// Repository is a minimal key/value store. Get returns (nil, nil) for a
// missing key so callers can fail safe to an empty state.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
