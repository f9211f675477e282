package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

// IdentifierLookup finds an account by email or username.
type IdentifierLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
}

// CredentialResolver maps {identifier, password} to an account.
type CredentialResolver struct {
	users     IdentifierLookup
	dummyHash string
}

// NewCredentialResolver precomputes a dummy bcrypt hash at the same cost as
// real hashes so a miss costs as much as a hit.
func NewCredentialResolver(users IdentifierLookup, bcryptCost int) (*CredentialResolver, error) {
	dummy, err := utils.HashPassword("dummy-password-for-timing", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &CredentialResolver{users: users, dummyHash: dummy}, nil
}

// Resolve returns the account whose email or username equals identifier and
// whose password hash verifies against password. Any mismatch yields
// ErrAuthenticationFailed.
func (r *CredentialResolver) Resolve(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := r.users.FindByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	hash := r.dummyHash
	if u != nil {
		hash = u.PasswordHash
	}
	// always pay for one comparison
	ok := utils.VerifyPassword(hash, password)
	if u == nil || !ok {
		return nil, ErrAuthenticationFailed
	}
	return u, nil
}
