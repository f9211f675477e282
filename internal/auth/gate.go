package auth

import (
	"strings"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// StatusGate rejects accounts whose lifecycle status forbids a session.
type StatusGate struct {
	denied map[string]bool
}

// NewStatusGate denies Pending and Blocked accounts.
func NewStatusGate() StatusGate {
	return StatusGate{denied: map[string]bool{
		strings.ToLower(model.AccountPending): true,
		strings.ToLower(model.AccountBlocked): true,
	}}
}

// Check returns *AccountNotActiveError for a denied status. Call it only
// after the password has been verified.
func (g StatusGate) Check(u *model.User) error {
	status := strings.ToLower(strings.TrimSpace(u.StatusLabel))
	if g.denied[status] {
		return &AccountNotActiveError{Status: status}
	}
	return nil
}
