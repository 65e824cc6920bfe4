package authentication_test

import (
	"context"
	"sync"
	"testing"
	"time"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/nasermirzaei89/labbook/authentication"
	authcontext "github.com/nasermirzaei89/labbook/authentication/context"
	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/authorization/casbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	lastID int64
	users  map[int64]*authentication.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int64]*authentication.User{}}
}

func (repo *memoryUserRepo) Insert(_ context.Context, user *authentication.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.users {
		if existing.Email == user.Email {
			return &authentication.UserAlreadyExistsError{Email: user.Email}
		}
	}

	repo.lastID++
	user.ID = repo.lastID

	stored := *user
	repo.users[user.ID] = &stored

	return nil
}

func (repo *memoryUserRepo) Find(_ context.Context, userID int64) (*authentication.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.users[userID]
	if !ok {
		return nil, &authentication.UserNotFoundError{ID: userID}
	}

	found := *user

	return &found, nil
}

func (repo *memoryUserRepo) FindByEmail(_ context.Context, email string) (*authentication.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, user := range repo.users {
		if user.Email == email {
			found := *user

			return &found, nil
		}
	}

	return nil, &authentication.UserByEmailNotFoundError{Email: email}
}

func (repo *memoryUserRepo) ListEmails(context.Context) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	emails := make([]string, 0, len(repo.users))
	for _, user := range repo.users {
		emails = append(emails, user.Email)
	}

	return emails, nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*authentication.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*authentication.Session{}}
}

func (repo *memorySessionRepo) Insert(_ context.Context, session *authentication.Session) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored := *session
	repo.sessions[session.ID] = &stored

	return nil
}

func (repo *memorySessionRepo) Find(_ context.Context, id string) (*authentication.Session, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	session, ok := repo.sessions[id]
	if !ok {
		return nil, &authentication.SessionNotFoundError{ID: id}
	}

	found := *session

	return &found, nil
}

func (repo *memorySessionRepo) Delete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.sessions[id]; !ok {
		return &authentication.SessionNotFoundError{ID: id}
	}

	delete(repo.sessions, id)

	return nil
}

func (repo *memorySessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var deleted int64

	for id, session := range repo.sessions {
		if session.ExpiresAt.Before(before) {
			delete(repo.sessions, id)

			deleted++
		}
	}

	return deleted, nil
}

type fixture struct {
	svc         *authentication.Service
	sessionRepo *memorySessionRepo
	authzClient *authorization.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	provider, err := casbin.NewAuthorizationProvider(
		stringadapter.NewAdapter("p, system:authenticated, labbook, *, read\n"),
	)
	require.NoError(t, err)

	authzSvc, err := authorization.NewService(provider)
	require.NoError(t, err)

	authzClient := authorization.NewClient(authzSvc)
	sessionRepo := newMemorySessionRepo()
	svc := authentication.NewService(newMemoryUserRepo(), sessionRepo, authzClient)

	err = svc.LoadEmailFilter(context.Background(), 100, 0.01)
	require.NoError(t, err)

	return &fixture{svc: svc, sessionRepo: sessionRepo, authzClient: authzClient}
}

var validRegistration = authentication.RegisterRequest{
	Email:     "Marie.Curie@example.com",
	FirstName: "Marie",
	LastName:  "Curie",
	Password:  "radium-1898",
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("new user joins the authenticated group", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		user, err := f.svc.Register(ctx, validRegistration)
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.Equal(t, "marie.curie@example.com", user.Email)
		assert.Equal(t, "Marie Curie", user.FullName())
		assert.Empty(t, user.PasswordHash)

		assert.True(t, f.authzClient.Can(ctx, authcontext.UserSubject(user.ID), "labbook", "anything", "read"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		_, err := f.svc.Register(ctx, validRegistration)
		require.NoError(t, err)

		duplicate := validRegistration
		duplicate.Email = "MARIE.CURIE@example.com"

		_, err = f.svc.Register(ctx, duplicate)

		var alreadyExistsErr *authentication.UserAlreadyExistsError
		require.ErrorAs(t, err, &alreadyExistsErr)
	})

	tests := []struct {
		name   string
		modify func(req *authentication.RegisterRequest)
		field  string
	}{
		{name: "invalid email", modify: func(req *authentication.RegisterRequest) { req.Email = "not-an-email" }, field: "email"},
		{name: "named email", modify: func(req *authentication.RegisterRequest) { req.Email = "Marie <m@example.com>" }, field: "email"},
		{name: "empty first name", modify: func(req *authentication.RegisterRequest) { req.FirstName = " " }, field: "first name"},
		{name: "empty last name", modify: func(req *authentication.RegisterRequest) { req.LastName = "" }, field: "last name"},
		{name: "short password", modify: func(req *authentication.RegisterRequest) { req.Password = "short" }, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)

			req := validRegistration
			tt.modify(&req)

			_, err := f.svc.Register(ctx, req)

			var invalidErr *authentication.InvalidInputError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.field, invalidErr.Field)
		})
	}
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.Register(ctx, validRegistration)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		session, err := f.svc.Login(ctx, " marie.curie@EXAMPLE.com", validRegistration.Password)
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)
		assert.True(t, session.ExpiresAt.After(session.CreatedAt))

		found, err := f.svc.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		_, err := f.svc.Login(ctx, validRegistration.Email, "wrong-password")
		require.ErrorIs(t, err, authentication.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		_, err := f.svc.Login(ctx, "nobody@example.com", validRegistration.Password)
		require.ErrorIs(t, err, authentication.ErrInvalidCredentials)
	})
}

func TestService_Sessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.Register(ctx, validRegistration)
	require.NoError(t, err)

	t.Run("logout removes the session", func(t *testing.T) {
		t.Parallel()

		session, err := f.svc.Login(ctx, validRegistration.Email, validRegistration.Password)
		require.NoError(t, err)

		err = f.svc.Logout(ctx, session.ID)
		require.NoError(t, err)

		_, err = f.svc.GetSession(ctx, session.ID)

		var notFoundErr *authentication.SessionNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		t.Parallel()

		expired := &authentication.Session{
			ID:        "expired-session",
			UserID:    user.ID,
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}

		err := f.sessionRepo.Insert(ctx, expired)
		require.NoError(t, err)

		_, err = f.svc.GetSession(ctx, expired.ID)

		var expiredErr *authentication.SessionExpiredError
		require.ErrorAs(t, err, &expiredErr)

		_, err = f.sessionRepo.Find(ctx, expired.ID)

		var notFoundErr *authentication.SessionNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestService_PurgeExpiredSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	for i, offset := range []time.Duration{-time.Hour, -time.Minute, time.Hour} {
		err := f.sessionRepo.Insert(ctx, &authentication.Session{
			ID:        string(rune('a' + i)),
			UserID:    1,
			ExpiresAt: time.Now().Add(offset),
		})
		require.NoError(t, err)
	}

	deleted, err := f.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestService_GetCurrentUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.Register(ctx, validRegistration)
	require.NoError(t, err)

	_, err = f.svc.GetCurrentUser(ctx)
	require.ErrorIs(t, err, authentication.ErrCurrentUserNotFound)

	current, err := f.svc.GetCurrentUser(authcontext.WithUserID(ctx, user.ID))
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.Empty(t, current.PasswordHash)

	_, err = f.svc.GetCurrentUser(authcontext.WithUserID(ctx, user.ID+1))

	var notFoundErr *authentication.UserNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestEmailFilter(t *testing.T) {
	t.Parallel()

	filter := authentication.NewEmailFilter(100, 0.01)

	filter.Add("Ada@Example.com")

	assert.True(t, filter.MayContain("ada@example.com"))
	assert.True(t, filter.MayContain(" ADA@EXAMPLE.COM "))
	assert.False(t, filter.MayContain("grace@example.com"))
}
