package models

// VerificationPurpose says why an OTP was requested.
type VerificationPurpose string

const (
	PurposeSignup        VerificationPurpose = "signup"
	PurposePasswordReset VerificationPurpose = "password-reset"
)

// PendingVerification tracks a single in-progress OTP verification.
// Only one may be active at a time; a later request overwrites it.
// It is consumed when verification succeeds or is abandoned.
type PendingVerification struct {
	Email     string              `json:"email"`
	Purpose   VerificationPurpose `json:"purpose"`
	NextRoute string              `json:"nextRoute"`
}

// RiderDocuments carries the uploaded identity document references a rider
// submits for verification. Values are URLs returned by the storage provider.
type RiderDocuments struct {
	NIN            string `json:"nin,omitempty"`
	BVN            string `json:"bvn,omitempty"`
	DriversLicense string `json:"driversLicense,omitempty"`
}
