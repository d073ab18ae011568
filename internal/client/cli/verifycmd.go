package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/parcel-ng/parcel-client/internal/client/otp"
)

// Verify prompts for the 6-digit code and submits it to the active flow.
func (a *App) Verify(ctx context.Context) error {
	p, ok := a.verify.Pending()
	if !ok && a.verify.State() != otp.StateVerified {
		fmt.Println("Nothing to verify. Run 'signup' or 'forgot' first.")
		return nil
	}
	if ok {
		fmt.Printf("Enter the 6-digit code sent to %s\n", p.Email)
	}

	code, err := getSimpleText(a.reader, "Code", os.Stdout)
	if err != nil {
		return err
	}

	route, err := a.verify.SubmitOTP(ctx, code)
	if err != nil {
		reportErr(err)
		return err
	}

	switch route {
	case otp.RouteCreatePassword:
		fmt.Println("Code accepted. Run 'resetpw' to choose a new password.")
	case otp.RouteRiderOnboarding:
		fmt.Println("Verification successful. Run 'riderverify' to submit your identity documents.")
	default:
		fmt.Println("Verification successful. Redirecting to your dashboard.")
	}
	return nil
}

// Resend re-issues the code for the pending verification.
func (a *App) Resend(ctx context.Context) error {
	if err := a.verify.ResendOTP(ctx); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("A new code has been sent to your email.")
	return nil
}
