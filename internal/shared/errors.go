package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Listening history errors
	ErrHistoryUnavailable = fmt.Errorf("listening history unavailable")
	ErrNoResults          = fmt.Errorf("no results")

	// Authorization errors
	ErrListenerBind        = fmt.Errorf("callback listener bind failed")
	ErrCallbackMalformed   = fmt.Errorf("malformed callback request")
	ErrCallbackUnparseable = fmt.Errorf("unparseable callback path")
	ErrMissingAuthCode     = fmt.Errorf("authorization code missing from callback")
	ErrStateMismatch       = fmt.Errorf("authorization state mismatch")
	ErrTokenExchange       = fmt.Errorf("token exchange failed")
	ErrAuthTimeout         = fmt.Errorf("authorization timed out or was canceled")

	// Catalog and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrPlaylistCreate     = fmt.Errorf("playlist creation failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrInvalidFlag  = fmt.Errorf("invalid flag value")
)

// Process exit codes, one per fatal error kind.
const (
	ExitOK             = 0  // success, including empty recommendations
	ExitFailure        = 1  // unclassified error
	ExitConfig         = 2  // missing or invalid credentials/config
	ExitHistory        = 3  // primary top-albums fetch failed
	ExitBind           = 4  // local listener bind failed
	ExitMalformed      = 5  // callback request malformed
	ExitUnparseable    = 6  // callback path unparseable
	ExitNoCode         = 7  // authorization code missing
	ExitStateMismatch  = 8  // echoed state did not match
	ExitTokenExchange  = 9  // token exchange rejected
	ExitPlaylistCreate = 10 // playlist creation rejected
	ExitAuthTimeout    = 11 // authorization wait timed out / canceled
)

// ExitCode maps a pipeline error to its process exit code so scripted callers
// can distinguish credential, callback, and catalog failures. Unclassified
// errors fall through to [ExitFailure].
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrMissingConfig):
		return ExitConfig
	case errors.Is(err, ErrHistoryUnavailable):
		return ExitHistory
	case errors.Is(err, ErrListenerBind):
		return ExitBind
	case errors.Is(err, ErrCallbackMalformed):
		return ExitMalformed
	case errors.Is(err, ErrCallbackUnparseable):
		return ExitUnparseable
	case errors.Is(err, ErrMissingAuthCode):
		return ExitNoCode
	case errors.Is(err, ErrStateMismatch):
		return ExitStateMismatch
	case errors.Is(err, ErrTokenExchange):
		return ExitTokenExchange
	case errors.Is(err, ErrPlaylistCreate):
		return ExitPlaylistCreate
	case errors.Is(err, ErrAuthTimeout):
		return ExitAuthTimeout
	default:
		return ExitFailure
	}
}
