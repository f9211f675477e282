package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/queue"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Begin(ctx context.Context, u *model.User, remember bool) (*Session, error) {
	args := m.Called(ctx, u, remember)
	if s := args.Get(0); s != nil {
		return s.(*Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessions) End(ctx context.Context, userID uint64, refreshRaw string) (uint64, error) {
	args := m.Called(ctx, userID, refreshRaw)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockSessions) Rotate(ctx context.Context, refreshRaw string, load func(uint64) (*model.User, error)) (*Session, error) {
	args := m.Called(ctx, refreshRaw, load)
	if s := args.Get(0); s != nil {
		return s.(*Session), args.Error(1)
	}
	return nil, args.Error(1)
}

type recorder struct{ events []queue.AccountEvent }

func (r *recorder) HandleAccountEvent(_ context.Context, ev queue.AccountEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func newTestService(t *testing.T, store *memStore, sessions SessionManager, subs ...Subscriber) *Service {
	t.Helper()
	log := discardLogger()
	if sessions == nil {
		sessions = NewTokenSessions(store, testSessionConfig)
	}
	svc, err := NewService(Deps{
		Users:       store,
		Roles:       store,
		Statuses:    store,
		Sessions:    sessions,
		Presence:    NewPresenceTracker(store, store, log),
		BcryptCost:  testCost,
		Logger:      log,
		Subscribers: subs,
	})
	require.NoError(t, err)
	return svc
}

func TestNewService_MissingDependency(t *testing.T) {
	_, err := NewService(Deps{Logger: discardLogger()})
	assert.Error(t, err)
}

func TestLogin_BlockedByEmail(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", model.AccountBlocked)
	svc := newTestService(t, store, nil)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice@example.com", Password: "correct-pw"})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotActive)
	assert.Equal(t, "Your account is blocked. Please contact an administrator.", err.Error())
	assert.Zero(t, store.liveTokens(alice.ID))
}

func TestLogin_ActiveByUsername(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	rec := &recorder{}
	svc := newTestService(t, store, nil, rec)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)

	assert.Equal(t, alice.ID, res.User.ID)
	assert.Equal(t, alice.ID, res.Session.UserID)
	assert.Equal(t, 1, store.liveTokens(alice.ID))

	claims, err := utils.ParseAccessToken(testSessionConfig.Secret, res.Session.Access.Token)
	require.NoError(t, err)
	sub, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, alice.ID, sub)

	stored, _ := store.GetByID(context.Background(), alice.ID)
	assert.Equal(t, model.OnlineOnline, stored.OnlineLabel)
	require.NotNil(t, res.User.OnlineStatusID, "returned user carries the new presence reference")
	assert.Equal(t, *stored.OnlineStatusID, *res.User.OnlineStatusID)
	assert.Equal(t, uint16(5), *res.User.OnlineStatusID)
	assert.Equal(t, model.OnlineOnline, res.User.OnlineLabel)

	require.Len(t, rec.events, 1)
	assert.Equal(t, queue.AccountLoggedIn, rec.events[0].Kind)
	assert.Equal(t, "alice", rec.events[0].Username)
}

func TestLogin_FailureMessagesIdentical(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	_, wrongPw := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "nope"})
	_, unknown := svc.Login(ctx, LoginInput{Identifier: "bob", Password: "nope"})

	assert.ErrorIs(t, wrongPw, ErrAuthenticationFailed)
	assert.ErrorIs(t, unknown, ErrAuthenticationFailed)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestLogin_WrongPasswordOnBlockedAccountIsAuthFailure(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", model.AccountBlocked)
	svc := newTestService(t, store, nil)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, ErrAccountNotActive)
}

func TestLogin_OtherStatusesPass(t *testing.T) {
	for _, status := range []string{"Active", model.AccountInactive} {
		t.Run(status, func(t *testing.T) {
			store := newMemStore()
			u := store.addUser("Carol", "carol", "carol@example.com", "pw-123456", status)
			svc := newTestService(t, store, nil)

			res, err := svc.Login(context.Background(), LoginInput{Identifier: "carol@example.com", Password: "pw-123456"})
			require.NoError(t, err)
			assert.Equal(t, u.ID, res.Session.UserID)
		})
	}
}

func TestLogin_PendingNeverBeginsSession(t *testing.T) {
	store := newMemStore()
	store.addUser("Dan", "dan", "dan@example.com", "pw-123456", model.AccountPending)
	sessions := &mockSessions{}
	svc := newTestService(t, store, sessions)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "dan", Password: "pw-123456"})

	var notActive *AccountNotActiveError
	require.ErrorAs(t, err, &notActive)
	assert.Equal(t, "pending", notActive.Status)
	sessions.AssertNotCalled(t, "Begin", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmailMatchWinsOverUsername(t *testing.T) {
	store := newMemStore()
	// first account's username equals the second account's email
	store.addUser("Eve", "x@example.com", "eve@example.com", "eve-pw", "Active")
	owner := store.addUser("Xavier", "xavier", "x@example.com", "x-pw", "Active")
	svc := newTestService(t, store, nil)

	res, err := svc.Login(context.Background(), LoginInput{Identifier: "x@example.com", Password: "x-pw"})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, res.User.ID)
}

func TestLogin_RememberExtendsRefreshLifetime(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	short, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)
	long, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw", Remember: true})
	require.NoError(t, err)

	assert.False(t, short.Session.Remember)
	assert.True(t, long.Session.Remember)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), short.Session.Refresh.Exp, time.Minute)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), long.Session.Refresh.Exp, time.Minute)
}

func TestLogin_BeginFailure(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	sessions := &mockSessions{}
	sessions.On("Begin", mock.Anything, mock.Anything, false).Return(nil, errors.New("db down"))
	svc := newTestService(t, store, sessions)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct-pw"})
	assert.ErrorContains(t, err, "db down")
	sessions.AssertExpectations(t)
}

func TestLogout_MarksOfflineOnly(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	rec := &recorder{}
	svc := newTestService(t, store, nil, rec)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)
	before, _ := store.GetByID(ctx, alice.ID)

	require.NoError(t, svc.Logout(ctx, alice.ID, res.Session.Refresh.Raw))

	after, _ := store.GetByID(ctx, alice.ID)
	require.NotNil(t, after.OnlineStatusID)
	assert.Equal(t, uint16(6), *after.OnlineStatusID)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, before.StatusID, after.StatusID)
	assert.Equal(t, before.RoleID, after.RoleID)
	assert.Zero(t, store.liveTokens(alice.ID))

	require.Len(t, rec.events, 2)
	assert.Equal(t, queue.AccountLoggedOut, rec.events[1].Kind)
	assert.Equal(t, alice.ID, rec.events[1].UserID)
}

func TestLogout_MissingOfflineRecordClearsReference(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)
	store.dropStatus(model.StatusTypeOnline, model.OnlineOffline)

	require.NoError(t, svc.Logout(ctx, alice.ID, ""))
	after, _ := store.GetByID(ctx, alice.ID)
	assert.Nil(t, after.OnlineStatusID)
	assert.Equal(t, model.OnlineOffline, after.OnlineDisplay())
}

func TestLogout_ForeignTokenRejected(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	bob := store.addUser("Bob", "bob", "bob@example.com", "bob-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)

	err = svc.Logout(ctx, bob.ID, res.Session.Refresh.Raw)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Equal(t, 1, store.liveTokens(alice.ID))
}

func TestLogout_EndErrorSkipsPresence(t *testing.T) {
	store := newMemStore()
	sessions := &mockSessions{}
	sessions.On("End", mock.Anything, uint64(0), "").Return(uint64(0), ErrNoSession)
	svc := newTestService(t, store, sessions)

	err := svc.Logout(context.Background(), 0, "  ")
	assert.ErrorIs(t, err, ErrNoSession)
	sessions.AssertExpectations(t)
}

func TestRegister_ThenLoginIsPending(t *testing.T) {
	store := newMemStore()
	rec := &recorder{}
	svc := newTestService(t, store, nil, rec)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: " Frank ", Username: "frank", Email: "Frank@Example.com", Password: "secret-pw"})
	require.NoError(t, err)
	assert.Equal(t, "Frank", u.Name)
	assert.Equal(t, "frank@example.com", u.Email)
	assert.Equal(t, model.RoleTourist, u.RoleName)
	assert.Equal(t, model.AccountPending, u.StatusLabel)
	require.NotNil(t, u.OnlineStatusID)
	assert.Equal(t, uint16(6), *u.OnlineStatusID)
	assert.NotEqual(t, "secret-pw", u.PasswordHash)

	_, err = svc.Login(ctx, LoginInput{Identifier: "frank", Password: "secret-pw"})
	assert.ErrorIs(t, err, ErrAccountNotActive)
	assert.Contains(t, err.Error(), "pending")

	require.Len(t, rec.events, 1)
	assert.Equal(t, queue.AccountRegistered, rec.events[0].Kind)
}

func TestRegister_Duplicates(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Username: "alice", Email: "new@example.com", Password: "secret-pw"})
	assert.ErrorIs(t, err, repository.ErrUsernameExists)

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Username: "alice2", Email: "ALICE@example.com", Password: "secret-pw"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestRegister_WithoutOfflineRecord(t *testing.T) {
	store := newMemStore()
	store.dropStatus(model.StatusTypeOnline, model.OnlineOffline)
	svc := newTestService(t, store, nil)

	u, err := svc.Register(context.Background(), RegisterInput{Name: "G", Username: "g", Email: "g@example.com", Password: "secret-pw"})
	require.NoError(t, err)
	assert.Nil(t, u.OnlineStatusID)
}

func TestRefresh_RotatesAndRechecksStatus(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw", Remember: true})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, res.Session.Refresh.Raw)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, next.User.ID)
	assert.True(t, next.Session.Remember)
	assert.NotEqual(t, res.Session.Refresh.Raw, next.Session.Refresh.Raw)

	_, err = svc.Refresh(ctx, res.Session.Refresh.Raw)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, store.SetAccountStatus(ctx, alice.ID, 2))
	_, err = svc.Refresh(ctx, next.Session.Refresh.Raw)
	assert.ErrorIs(t, err, ErrAccountNotActive)
}

func TestSetAccountStatus_BlockRevokesSessions(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	rec := &recorder{}
	svc := newTestService(t, store, nil, rec)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "correct-pw"})
	require.NoError(t, err)

	u, err := svc.SetAccountStatus(ctx, alice.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, model.AccountBlocked, u.StatusLabel)
	assert.Zero(t, store.liveTokens(alice.ID))

	after, _ := store.GetByID(ctx, alice.ID)
	assert.Equal(t, model.OnlineOffline, after.OnlineLabel)
	assert.Equal(t, queue.AccountStatusChanged, rec.events[len(rec.events)-1].Kind)
}

func TestSetAccountStatus_UnknownLabel(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	svc := newTestService(t, store, nil)

	_, err := svc.SetAccountStatus(context.Background(), alice.ID, "Suspended")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSubscriberErrorsDoNotFailLogin(t *testing.T) {
	store := newMemStore()
	store.addUser("Alice", "alice", "alice@example.com", "correct-pw", "Active")
	failing := SubscriberFunc(func(context.Context, queue.AccountEvent) error { return errors.New("broker down") })
	svc := newTestService(t, store, nil, failing)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "alice", Password: "correct-pw"})
	assert.NoError(t, err)
}
