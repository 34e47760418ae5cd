package identity

import "errors"

var (
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrUserDisabled indicates the account has been disabled.
	ErrUserDisabled = errors.New("user disabled")
	// ErrUserNotFound indicates no account exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword indicates a password mismatch.
	ErrWrongPassword = errors.New("wrong password")
	// ErrEmailAlreadyInUse indicates the email is already registered.
	ErrEmailAlreadyInUse = errors.New("email already in use")
	// ErrWeakPassword indicates the password fails the minimum policy.
	ErrWeakPassword = errors.New("weak password")
)

// Message maps an identity error to the fixed user-facing message for
// it. Unrecognized errors map to a generic message rather than leaking
// internals.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address."
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled."
	case errors.Is(err, ErrUserNotFound):
		return "No account found for this email."
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password."
	case errors.Is(err, ErrEmailAlreadyInUse):
		return "This email is already in use."
	case errors.Is(err, ErrWeakPassword):
		return "Password is too weak."
	default:
		return "An unknown error occurred."
	}
}
