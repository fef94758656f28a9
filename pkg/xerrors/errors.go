package xerrors

import "errors"

// Kind buckets registration failures for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
)

// UserError carries a stable machine-readable reason code alongside the
// human-readable message. Callers match with errors.Is against the
// sentinels below.
type UserError struct {
	Code string
	Msg  string
	Kind Kind
}

func (e *UserError) Error() string { return e.Msg }

// Validation
var (
	ErrInvalidEmail    = &UserError{Code: "invalid-email", Msg: "invalid email address", Kind: KindInvalidInput}
	ErrInvalidUsername = &UserError{Code: "invalid-username", Msg: "invalid username", Kind: KindInvalidInput}
	ErrInvalidPassword = &UserError{Code: "invalid-password", Msg: "invalid password", Kind: KindInvalidInput}
)

// Password rules
var (
	ErrPasswordTooShort = &UserError{Code: "password-too-short", Msg: "password is too short", Kind: KindInvalidInput}
	ErrPasswordTooLong  = &UserError{Code: "password-too-long", Msg: "password must not exceed 512 characters", Kind: KindInvalidInput}
	ErrWeakPassword     = &UserError{Code: "weak-password", Msg: "password is too weak", Kind: KindInvalidInput}
)

// Registration conflicts
var (
	ErrUsernameTaken = &UserError{Code: "username-taken", Msg: "username already taken", Kind: KindConflict}
	ErrEmailTaken    = &UserError{Code: "email-taken", Msg: "email already in use", Kind: KindConflict}
)

// CodeOf extracts the reason code, falling back to "internal-error" for
// anything that is not a UserError.
func CodeOf(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code
	}
	return "internal-error"
}

// KindOf classifies err for status mapping.
func KindOf(err error) Kind {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindInternal
}
