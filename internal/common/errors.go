// Package common defines shared sentinel errors used across the client
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors, caught locally before any network call.
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidOTPFormat   = errors.New("verification code must be exactly 6 digits")
	ErrInvalidPINFormat   = errors.New("delivery pin must be exactly 4 digits")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password does not meet the required criteria")
	ErrTermsNotAgreed     = errors.New("you have to agree to terms to proceed")

	// Flow-control errors.
	ErrNoPendingVerification = errors.New("no pending verification")
	ErrNoResetCredential     = errors.New("no reset code found, request a new one")
	ErrInvalidTransition     = errors.New("order is not in a state that allows this action")
	ErrNotFound              = errors.New("not found")
)
