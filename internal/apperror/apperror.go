// Package apperror defines the application's error taxonomy.
//
// Services and repositories return these domain errors; the HTTP layer
// translates them into status codes and the uniform response envelope in
// exactly one place (handler.writeError). Middleware gates carry their
// own status mapping because the API distinguishes the gate that failed
// (401 token, 405 acceptance, 406 enabled, 403 role).
//
// Client-facing messages are Hungarian, matching the public API contract.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap with AppError (or fmt.Errorf + %w) so that
// errors.Is can classify a failure anywhere up the call chain.
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateEmail      = errors.New("duplicate email")
	ErrNotFound            = errors.New("not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrMissingCredential   = errors.New("missing credential")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrForbiddenRole       = errors.New("forbidden role")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrRegistrationPending = errors.New("registration pending")
	ErrTokenExhausted      = errors.New("token generation exhausted")
	ErrResolution          = errors.New("role resolution fault")
	ErrConflict            = errors.New("conflicting state")
)

// AppError pairs a sentinel with the human-readable message returned to
// the client and, for validation failures, the collected field errors.
type AppError struct {
	Err     error    // sentinel (one of the vars above)
	Message string   // client-facing message
	Errors  []string // validation details, returned verbatim in the envelope
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationFailed collects form-level validation errors. The message is
// the generic one the API always uses; the details ride in Errors.
func ValidationFailed(details []string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Hibás bemeneti adat(ok)",
		Errors:  details,
	}
}

// BadInput flags a malformed path or body parameter (non-numeric id,
// missing required field). Distinct from ValidationFailed only in its
// message; both unwrap to ErrValidation.
func BadInput() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "érvénytelen bemeneti adat",
	}
}

// DuplicateEmail rejects a registration against an already-taken email.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "Az email cím már foglalt",
	}
}

// NotFound reports a missing domain resource with a route-specific message.
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// MissingCredential means the request carried no token header at all.
func MissingCredential() *AppError {
	return &AppError{
		Err:     ErrMissingCredential,
		Message: "Nincs token megadva",
	}
}

// InvalidCredential covers unknown/invalidated tokens and failed
// password comparisons.
func InvalidCredential(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidCredential,
		Message: message,
	}
}

// ForbiddenRole means the authenticated account's role does not match
// the role the route requires.
func ForbiddenRole() *AppError {
	return &AppError{
		Err:     ErrForbiddenRole,
		Message: "Hozzáférés megtagadva. Nem megfelelő szerepkör.",
	}
}

// AccountNotFound means the role-profile row for the authenticated user
// is missing. Surfaces through whichever gate ran the lookup.
func AccountNotFound() *AppError {
	return &AppError{
		Err:     ErrAccountNotFound,
		Message: "A fiók nem található.",
	}
}

// AccountDisabled models administrative suspension (is_enabled = 0).
func AccountDisabled() *AppError {
	return &AppError{
		Err:     ErrAccountDisabled,
		Message: "A fiók le van tiltva.",
	}
}

// RegistrationPending models an institution awaiting admin approval
// (is_accepted = 0).
func RegistrationPending() *AppError {
	return &AppError{
		Err:     ErrRegistrationPending,
		Message: "A fiókregisztráció nincs jóváhagyva.",
	}
}

// Conflict rejects an operation against the current state of the data
// (following twice, unliking a post that carries no like). Reported as
// a plain failure, not a missing resource.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// TokenExhausted signals that the issuer could not find a unique token
// value within its attempt budget. This is a catastrophic randomness or
// store failure, not expected contention.
func TokenExhausted() *AppError {
	return &AppError{
		Err:     ErrTokenExhausted,
		Message: "Túl sok próbálkozás a token generálás során",
	}
}

// Resolution wraps an unexpected query fault while resolving the role of
// an already-validated token. Reported as a server-side fault, not a
// credential problem, because the token was already confirmed valid.
func Resolution(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrResolution, err),
		Message: "Hiba a token ellenőrzése során",
	}
}
