package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/parcel-ng/parcel-client/internal/client/models"
	"github.com/parcel-ng/parcel-client/internal/common"
	"github.com/parcel-ng/parcel-client/internal/validate"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp walks the rider registration form: names, email, a password that
// meets all five strength criteria, and terms agreement. On success the
// backend has dispatched a verification code and the flow waits for
// 'verify'.
func (a *App) SignUp(ctx context.Context) error {
	firstname, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastname, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if !validate.Email(email) {
		reportErr(common.ErrInvalidEmailFormat)
		return common.ErrInvalidEmailFormat
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	if criteria := validate.CheckPassword(password); !criteria.AllMet() {
		fmt.Println("Password does not meet the required criteria:")
		for _, c := range criteria.Unmet() {
			fmt.Println("  -", c)
		}
		return common.ErrWeakPassword
	}
	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	if password != confirm {
		reportErr(common.ErrPasswordMismatch)
		return common.ErrPasswordMismatch
	}

	agreed, err := GetYesNo(a.reader, "Do you agree to the terms and privacy policy?", os.Stdout)
	if err != nil {
		return err
	}
	if !agreed {
		reportErr(common.ErrTermsNotAgreed)
		return common.ErrTermsNotAgreed
	}

	if err := a.apiClient.RegisterRider(ctx, firstname, lastname, email, password); err != nil {
		reportErr(err)
		return err
	}

	// Registration dispatched the code; record the pending verification.
	if err := a.verify.Begin(ctx, email, models.PurposeSignup); err != nil {
		return err
	}

	fmt.Printf("A 6-digit code has been sent to %s. Run 'verify' to continue.\n", email)
	return nil
}

// SignIn authenticates and establishes the session.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		fmt.Println("Email and password are required fields.")
		return nil
	}

	sess, err := a.apiClient.SignIn(ctx, email, password)
	if err != nil {
		reportErr(err)
		return err
	}
	if err := a.sessions.Login(ctx, sess.User, sess.AccessToken, sess.RefreshToken); err != nil {
		reportErr(err)
		return err
	}

	fmt.Println("Login successful! Welcome back.")
	return nil
}

// ForgotPassword starts the password-reset flow by requesting an OTP.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter your account email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.verify.RequestOTP(ctx, email, models.PurposePasswordReset); err != nil {
		reportErr(err)
		return err
	}

	fmt.Printf("A reset code has been sent to %s. Run 'verify' to continue.\n", email)
	return nil
}

// ResetPassword completes the reset using the locally accepted code.
func (a *App) ResetPassword(ctx context.Context) error {
	password, err := getPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.verify.CompletePasswordReset(ctx, password, confirm); err != nil {
		reportErr(err)
		return err
	}

	fmt.Println("Password reset successfully. Run 'signin' to continue.")
	return nil
}

// WhoAmI shows the current identity.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s %s <%s> (%s)\n", u.FirstName, u.LastName, u.Email, u.Role)
	return nil
}

// Logout clears the local session. No network call is made.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("Signed out.")
	return nil
}
