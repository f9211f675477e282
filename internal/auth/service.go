// Package auth implements account login and logout: credential resolution,
// status gating, session establishment and presence tracking.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/queue"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

// Presence is the subset of PresenceTracker used by Service.
type Presence interface {
	MarkOnline(ctx context.Context, userID uint64) (*uint16, error)
	MarkOffline(ctx context.Context, userID uint64) error
}

// Deps wires a Service. Every field except Subscribers is required.
type Deps struct {
	Users       UserStore
	Roles       RoleStore
	Statuses    StatusStore
	Sessions    SessionManager
	Presence    Presence
	BcryptCost  int
	Logger      *slog.Logger
	Subscribers []Subscriber
}

// Service runs the login pipeline (resolve, gate, begin session) and the
// logout path (end session, mark offline).
type Service struct {
	resolver    *CredentialResolver
	gate        StatusGate
	users       UserStore
	roles       RoleStore
	statuses    StatusStore
	sessions    SessionManager
	presence    Presence
	bcryptCost  int
	log         *slog.Logger
	subscribers []Subscriber
	now         func() time.Time
}

func NewService(d Deps) (*Service, error) {
	if d.Users == nil || d.Roles == nil || d.Statuses == nil || d.Sessions == nil || d.Presence == nil || d.Logger == nil {
		return nil, errors.New("auth: missing dependency")
	}
	resolver, err := NewCredentialResolver(d.Users, d.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		resolver:    resolver,
		gate:        NewStatusGate(),
		users:       d.Users,
		roles:       d.Roles,
		statuses:    d.Statuses,
		sessions:    d.Sessions,
		presence:    d.Presence,
		bcryptCost:  d.BcryptCost,
		log:         d.Logger,
		subscribers: d.Subscribers,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// LoginInput is a login attempt. Identifier is an email or a username.
type LoginInput struct {
	Identifier string
	Password   string
	Remember   bool
}

// Result is a successful login or refresh.
type Result struct {
	User    *model.User
	Session *Session
}

// Login authenticates in.Identifier/in.Password and begins a session. Failed
// credentials return ErrAuthenticationFailed; a Pending or Blocked account
// returns *AccountNotActiveError and no session is created.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	u, err := s.resolver.Resolve(ctx, in.Identifier, in.Password)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Check(u); err != nil {
		s.log.InfoContext(ctx, "login denied", "user_id", u.ID, "status", u.StatusLabel)
		return nil, err
	}
	sess, err := s.sessions.Begin(ctx, u, in.Remember)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	// presence is advisory; a failure here must not undo the login
	if ref, err := s.presence.MarkOnline(ctx, u.ID); err != nil {
		s.log.WarnContext(ctx, "mark online failed", "user_id", u.ID, "error", err)
	} else {
		u.OnlineStatusID, u.OnlineLabel = ref, ""
		if ref != nil {
			u.OnlineLabel = model.OnlineOnline
		}
	}
	s.emit(ctx, s.event(queue.AccountLoggedIn, u, in.Remember))
	return &Result{User: u, Session: sess}, nil
}

// Logout ends the session identified by refreshRaw, or all sessions of
// userID when refreshRaw is empty, then marks the account offline.
func (s *Service) Logout(ctx context.Context, userID uint64, refreshRaw string) error {
	owner, err := s.sessions.End(ctx, userID, strings.TrimSpace(refreshRaw))
	if err != nil {
		return err
	}
	if err := s.presence.MarkOffline(ctx, owner); err != nil {
		return fmt.Errorf("mark offline: %w", err)
	}
	s.emit(ctx, queue.AccountEvent{Kind: queue.AccountLoggedOut, UserID: owner, At: s.now().Format(time.RFC3339)})
	return nil
}

// Refresh rotates a refresh token. The owner must still pass the status gate.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*Result, error) {
	var owner *model.User
	sess, err := s.sessions.Rotate(ctx, strings.TrimSpace(refreshRaw), func(id uint64) (*model.User, error) {
		u, err := s.users.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		if err != nil {
			return nil, err
		}
		if err := s.gate.Check(u); err != nil {
			return nil, err
		}
		owner = u
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{User: owner, Session: sess}, nil
}

// RegisterInput is a validated self-registration request.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Register creates a Tourist account in Pending status with an OFFLINE
// presence. Duplicate username or email surfaces as
// repository.ErrUsernameExists / repository.ErrEmailExists.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role, err := s.roles.GetByName(ctx, model.RoleTourist)
	if err != nil {
		return nil, fmt.Errorf("lookup role %q: %w", model.RoleTourist, err)
	}
	pending, err := s.statuses.FindByTypeAndLabel(ctx, model.StatusTypeAccount, model.AccountPending)
	if err != nil {
		return nil, fmt.Errorf("lookup status %q: %w", model.AccountPending, err)
	}
	var offline *model.Status
	if st, err := s.statuses.FindByTypeAndLabel(ctx, model.StatusTypeOnline, model.OnlineOffline); err == nil {
		offline = st
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup status %q: %w", model.OnlineOffline, err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := newAccount(in, hash, role, pending, offline)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.emit(ctx, s.event(queue.AccountRegistered, u, false))
	return u, nil
}

// newAccount maps registration input to a users row.
func newAccount(in RegisterInput, hash string, role *model.Role, status, online *model.Status) *model.User {
	u := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
		StatusID:     status.ID,
		StatusLabel:  status.Status,
	}
	if online != nil {
		id := online.ID
		u.OnlineStatusID = &id
		u.OnlineLabel = online.Status
	}
	return u
}

// SetAccountStatus moves a user to the ACCOUNT status named label. Moving an
// account to a denied status revokes all of its sessions.
func (s *Service) SetAccountStatus(ctx context.Context, userID uint64, label string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	st, err := s.statuses.FindByTypeAndLabel(ctx, model.StatusTypeAccount, label)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAccountStatus(ctx, userID, st.ID); err != nil {
		return nil, err
	}
	u.StatusID, u.StatusLabel = st.ID, st.Status
	if s.gate.Check(u) != nil {
		if _, err := s.sessions.End(ctx, userID, ""); err != nil {
			return nil, fmt.Errorf("revoke sessions: %w", err)
		}
		if err := s.presence.MarkOffline(ctx, userID); err != nil {
			s.log.WarnContext(ctx, "mark offline failed", "user_id", userID, "error", err)
		}
	}
	s.emit(ctx, s.event(queue.AccountStatusChanged, u, false))
	return u, nil
}

func (s *Service) event(kind queue.AccountEventKind, u *model.User, remember bool) queue.AccountEvent {
	return queue.AccountEvent{
		Kind:     kind,
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.RoleName,
		Status:   u.StatusLabel,
		Remember: remember,
		At:       s.now().Format(time.RFC3339),
	}
}
