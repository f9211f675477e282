package auth

import (
	"context"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// UserStore is the slice of the user repository the auth flow needs.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	SetOnlineStatus(ctx context.Context, id uint64, statusID *uint16) error
	SetAccountStatus(ctx context.Context, id uint64, statusID uint16) error
}

// StatusStore resolves seeded status rows.
type StatusStore interface {
	FindByTypeAndLabel(ctx context.Context, typ model.StatusType, label string) (*model.Status, error)
}

// RoleStore resolves seeded role rows.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (*model.Role, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, remember bool, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
