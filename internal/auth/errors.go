package auth

import (
	"errors"
	"fmt"
)

// ErrAuthenticationFailed is returned for an unknown identifier and for a
// wrong password alike. Its message must not tell the two apart.
var ErrAuthenticationFailed = errors.New("invalid credentials")

// ErrAccountNotActive matches any *AccountNotActiveError via errors.Is.
var ErrAccountNotActive = errors.New("account not active")

// ErrNoSession is returned by Logout when neither a user nor a refresh
// token identifies a session.
var ErrNoSession = errors.New("no session to end")

// ErrSessionInvalid is returned for unknown, expired or revoked refresh
// tokens, or a token that belongs to a different user.
var ErrSessionInvalid = errors.New("invalid session")

// AccountNotActiveError carries the lower-cased status that blocked login.
type AccountNotActiveError struct {
	Status string
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("Your account is %s. Please contact an administrator.", e.Status)
}

func (e *AccountNotActiveError) Is(target error) bool {
	return target == ErrAccountNotActive
}
