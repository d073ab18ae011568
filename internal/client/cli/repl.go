package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs. The real
// App satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Orders(ctx context.Context) error
	More(ctx context.Context) error
	Accept(ctx context.Context, orderID string) error
	Complete(ctx context.Context, orderID string) error
	WalletSummary(ctx context.Context) error
	Notifications(ctx context.Context) error
	ReadAll(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	RiderVerify(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches to a. The loop exits
// on scanner EOF or "exit"/"quit". Handler errors are already reported to
// the user by the handlers themselves and are ignored here so one failed
// command never tears down the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("parcel %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: orders, more, accept <id>, complete <id>, wallet, notifications, readall, delnotif <id>, riderverify, whoami, logout, exit")
			} else {
				printlnFn("Available commands: signup, signin, verify, resend, forgot, resetpw, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "resetpw":
			_ = a.ResetPassword(ctx)

		case "o", "orders":
			_ = a.Orders(ctx)

		case "more":
			_ = a.More(ctx)

		case "accept":
			if len(args) == 0 {
				printlnFn("Usage: accept <order-id>")
				continue
			}
			_ = a.Accept(ctx, args[0])

		case "complete":
			if len(args) == 0 {
				printlnFn("Usage: complete <order-id>")
				continue
			}
			_ = a.Complete(ctx, args[0])

		case "wallet":
			_ = a.WalletSummary(ctx)

		case "n", "notifications":
			_ = a.Notifications(ctx)

		case "readall":
			_ = a.ReadAll(ctx)

		case "delnotif":
			if len(args) == 0 {
				printlnFn("Usage: delnotif <id>")
				continue
			}
			_ = a.DeleteNotification(ctx, args[0])

		case "riderverify":
			_ = a.RiderVerify(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
