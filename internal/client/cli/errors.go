package cli

import (
	"errors"
	"fmt"

	"github.com/parcel-ng/parcel-client/internal/client/api"
)

// reportErr prints err the way the user should see it: backend messages
// verbatim, transport problems as a generic retry hint, validation errors
// as-is. No retries happen here; the user re-runs the command.
func reportErr(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, api.ErrUnavailable):
		fmt.Println("Something went wrong. Please try again.")
	default:
		fmt.Println(err.Error())
	}
}
