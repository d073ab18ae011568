// Package validate implements the client-side input checks that gate every
// network call: email shape, password strength, and one-time code formats.
package validate

import "regexp"

var (
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpRe     = regexp.MustCompile(`^\d{6}$`)
	pinRe     = regexp.MustCompile(`^\d{4}$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	numericRe = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// OTP reports whether code is exactly 6 digits.
func OTP(code string) bool {
	return otpRe.MatchString(code)
}

// PIN reports whether pin is exactly 4 digits.
func PIN(pin string) bool {
	return pinRe.MatchString(pin)
}

// PasswordCriteria records which strength requirements a password meets.
type PasswordCriteria struct {
	MinLength   bool
	Uppercase   bool
	Lowercase   bool
	Numeric     bool
	SpecialChar bool
}

// CheckPassword evaluates all five strength criteria for password.
func CheckPassword(password string) PasswordCriteria {
	return PasswordCriteria{
		MinLength:   len(password) >= 6,
		Uppercase:   upperRe.MatchString(password),
		Lowercase:   lowerRe.MatchString(password),
		Numeric:     numericRe.MatchString(password),
		SpecialChar: specialRe.MatchString(password),
	}
}

// AllMet reports whether every criterion is satisfied.
func (c PasswordCriteria) AllMet() bool {
	return c.MinLength && c.Uppercase && c.Lowercase && c.Numeric && c.SpecialChar
}

// Unmet lists human-readable descriptions of the failed criteria,
// in display order.
func (c PasswordCriteria) Unmet() []string {
	var out []string
	if !c.MinLength {
		out = append(out, "at least 6 characters")
	}
	if !c.Uppercase {
		out = append(out, "at least one uppercase letter")
	}
	if !c.Lowercase {
		out = append(out, "at least one lowercase letter")
	}
	if !c.Numeric {
		out = append(out, "at least one numeric character")
	}
	if !c.SpecialChar {
		out = append(out, "at least one special character")
	}
	return out
}
