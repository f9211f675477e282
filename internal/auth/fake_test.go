package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

const testCost = 4 // bcrypt.MinCost

// memStore is an in-memory UserStore, StatusStore, RoleStore and TokenStore.
type memStore struct {
	mu       sync.Mutex
	users    map[uint64]*model.User
	statuses []model.Status
	roles    []model.Role
	tokens   map[string]*model.RefreshToken
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		users: map[uint64]*model.User{},
		statuses: []model.Status{
			{ID: 1, Status: model.AccountPending, Type: model.StatusTypeAccount},
			{ID: 2, Status: model.AccountBlocked, Type: model.StatusTypeAccount},
			{ID: 3, Status: "Active", Type: model.StatusTypeAccount},
			{ID: 4, Status: model.AccountInactive, Type: model.StatusTypeAccount},
			{ID: 5, Status: model.OnlineOnline, Type: model.StatusTypeOnline},
			{ID: 6, Status: model.OnlineOffline, Type: model.StatusTypeOnline},
		},
		roles:  []model.Role{{ID: 1, Name: model.RoleAdmin}, {ID: 6, Name: model.RoleTourist}},
		tokens: map[string]*model.RefreshToken{},
		nextID: 1,
	}
}

func (m *memStore) status(typ model.StatusType, label string) *model.Status {
	for i := range m.statuses {
		if m.statuses[i].Type == typ && strings.EqualFold(m.statuses[i].Status, label) {
			return &m.statuses[i]
		}
	}
	return nil
}

func (m *memStore) dropStatus(typ model.StatusType, label string) {
	out := m.statuses[:0]
	for _, s := range m.statuses {
		if s.Type == typ && s.Status == label {
			continue
		}
		out = append(out, s)
	}
	m.statuses = out
}

// addUser stores an account with a real bcrypt hash of password.
func (m *memStore) addUser(name, username, email, password, status string) *model.User {
	hash, err := utils.HashPassword(password, testCost)
	if err != nil {
		panic(err)
	}
	st := m.status(model.StatusTypeAccount, status)
	u := &model.User{
		Name: name, Username: username, Email: email, PasswordHash: hash,
		RoleID: 6, RoleName: model.RoleTourist, StatusID: st.ID, StatusLabel: st.Status,
	}
	if err := m.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (m *memStore) copyOf(u *model.User) *model.User {
	c := *u
	if u.OnlineStatusID != nil {
		v := *u.OnlineStatusID
		c.OnlineStatusID = &v
	}
	return &c
}

func (m *memStore) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.User
	for id := uint64(1); id < m.nextID; id++ {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		if u.Email == strings.ToLower(identifier) {
			return m.copyOf(u), nil
		}
		if best == nil && u.Username == identifier {
			best = u
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return m.copyOf(best), nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.copyOf(u), nil
}

func (m *memStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = m.copyOf(u)
	return nil
}

func (m *memStore) SetOnlineStatus(_ context.Context, id uint64, statusID *uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.OnlineStatusID = statusID
	u.OnlineLabel = ""
	if statusID != nil {
		for _, s := range m.statuses {
			if s.ID == *statusID {
				u.OnlineLabel = s.Status
			}
		}
	}
	return nil
}

func (m *memStore) SetAccountStatus(_ context.Context, id uint64, statusID uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.StatusID = statusID
	for _, s := range m.statuses {
		if s.ID == statusID {
			u.StatusLabel = s.Status
		}
	}
	return nil
}

func (m *memStore) FindByTypeAndLabel(_ context.Context, typ model.StatusType, label string) (*model.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status(typ, label)
	if st == nil {
		return nil, repository.ErrNotFound
	}
	c := *st
	return &c, nil
}

func (m *memStore) GetByName(_ context.Context, name string) (*model.Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			c := r
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) StoreRefresh(_ context.Context, userID uint64, hash string, remember bool, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = &model.RefreshToken{UserID: userID, TokenHash: hash, Remember: remember, ExpiresAt: exp}
	return nil
}

func (m *memStore) ValidateRefresh(_ context.Context, hash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok || t.RevokedAt != nil || time.Now().After(t.ExpiresAt) {
		return nil, repository.ErrTokenInvalid
	}
	c := *t
	return &c, nil
}

func (m *memStore) RevokeByHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[hash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (m *memStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *memStore) liveTokens(userID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSessionConfig = SessionConfig{
	Secret:       "test-secret",
	AccessTTLMin: 15,
	SessionTTL:   2 * time.Hour,
	RememberTTL:  30 * 24 * time.Hour,
}
