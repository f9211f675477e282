package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

// Session is the credential pair handed to a client after login.
type Session struct {
	UserID   uint64
	Role     string
	Remember bool
	Access   utils.AccessToken
	Refresh  utils.RefreshToken
}

// SessionManager begins and ends authenticated sessions.
type SessionManager interface {
	Begin(ctx context.Context, u *model.User, remember bool) (*Session, error)
	// End revokes refreshRaw when given, otherwise every token of userID.
	// It returns the id of the account whose session ended.
	End(ctx context.Context, userID uint64, refreshRaw string) (uint64, error)
	// Rotate exchanges a refresh token for a new pair. load fetches and
	// vets the owner before the old token is revoked.
	Rotate(ctx context.Context, refreshRaw string, load func(uint64) (*model.User, error)) (*Session, error)
}

// SessionConfig holds token lifetimes.
type SessionConfig struct {
	Secret       string
	AccessTTLMin int
	SessionTTL   time.Duration // refresh lifetime without "remember me"
	RememberTTL  time.Duration // refresh lifetime with "remember me"
}

// TokenSessions implements SessionManager with a signed access JWT and a
// hashed opaque refresh token.
type TokenSessions struct {
	tokens TokenStore
	cfg    SessionConfig
}

func NewTokenSessions(tokens TokenStore, cfg SessionConfig) *TokenSessions {
	return &TokenSessions{tokens: tokens, cfg: cfg}
}

func (s *TokenSessions) refreshTTL(remember bool) time.Duration {
	if remember {
		return s.cfg.RememberTTL
	}
	return s.cfg.SessionTTL
}

// Begin issues an access token bound to u and stores a refresh token whose
// lifetime depends on remember.
func (s *TokenSessions) Begin(ctx context.Context, u *model.User, remember bool) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.RoleName, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTL(remember))
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), remember, refresh.Exp); err != nil {
		return nil, fmt.Errorf("store refresh: %w", err)
	}
	return &Session{UserID: u.ID, Role: u.RoleName, Remember: remember, Access: access, Refresh: refresh}, nil
}

func (s *TokenSessions) End(ctx context.Context, userID uint64, refreshRaw string) (uint64, error) {
	if refreshRaw != "" {
		hash := utils.HashRefreshRaw(refreshRaw)
		tok, err := s.tokens.ValidateRefresh(ctx, hash)
		if err != nil {
			if errors.Is(err, repository.ErrTokenInvalid) {
				return 0, ErrSessionInvalid
			}
			return 0, err
		}
		if userID != 0 && tok.UserID != userID {
			return 0, ErrSessionInvalid
		}
		if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
			return 0, err
		}
		return tok.UserID, nil
	}
	if userID == 0 {
		return 0, ErrNoSession
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// Rotate validates and revokes refreshRaw, then begins a new session for the
// owner with the same remember flag.
func (s *TokenSessions) Rotate(ctx context.Context, refreshRaw string, load func(uint64) (*model.User, error)) (*Session, error) {
	hash := utils.HashRefreshRaw(refreshRaw)
	tok, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	u, err := load(tok.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}
	return s.Begin(ctx, u, tok.Remember)
}
