package authentication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	authcontext "github.com/nasermirzaei89/labbook/authentication/context"
	"github.com/nasermirzaei89/labbook/authorization"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

type Service struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	authzClient *authorization.Client
	emailFilter *EmailFilter
}

func NewService(userRepo UserRepository, sessionRepo SessionRepository, authzClient *authorization.Client) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		authzClient: authzClient,
	}
}

// LoadEmailFilter fills the registration filter with every stored email.
func (svc *Service) LoadEmailFilter(ctx context.Context, minCapacity uint, falsePositiveRate float64) error {
	emails, err := svc.userRepo.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to list emails for filter: %w", err)
	}

	capacity := max(uint(len(emails)), minCapacity)

	filter := NewEmailFilter(capacity, falsePositiveRate)
	for _, email := range emails {
		filter.Add(email)
	}

	svc.emailFilter = filter

	return nil
}

func HashPassword(password string) (string, error) {
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(bcryptHash), nil
}

type RegisterRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

func (req RegisterRequest) validate() error {
	address, err := mail.ParseAddress(req.Email)
	if err != nil || address.Address != strings.TrimSpace(req.Email) {
		return &InvalidInputError{Field: "email", Reason: "not a valid address"}
	}

	if strings.TrimSpace(req.FirstName) == "" {
		return &InvalidInputError{Field: "first name", Reason: "must not be empty"}
	}

	if strings.TrimSpace(req.LastName) == "" {
		return &InvalidInputError{Field: "last name", Reason: "must not be empty"}
	}

	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return &InvalidInputError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		}
	}

	return nil
}

func (svc *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	err := req.validate()
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)

	if svc.emailFilter == nil || svc.emailFilter.MayContain(email) {
		_, err = svc.userRepo.FindByEmail(ctx, email)
		if err == nil {
			return nil, &UserAlreadyExistsError{Email: email}
		}

		var notFoundErr *UserByEmailNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to check if email already exists: %w", err)
		}
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: passwordHash,
		RegisteredAt: time.Now().UTC(),
	}

	err = svc.userRepo.Insert(ctx, user)
	if err != nil {
		var alreadyExistsErr *UserAlreadyExistsError
		if errors.As(err, &alreadyExistsErr) {
			svc.rememberEmail(email)

			return nil, alreadyExistsErr
		}

		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	svc.rememberEmail(email)

	err = svc.authzClient.AddToGroup(ctx, authcontext.UserSubject(user.ID), authcontext.Authenticated)
	if err != nil {
		return nil, fmt.Errorf("failed to add user to authenticated group: %w", err)
	}

	user.PasswordHash = ""

	return user, nil
}

func (svc *Service) rememberEmail(email string) {
	if svc.emailFilter != nil {
		svc.emailFilter.Add(email)
	}
}

var ErrInvalidCredentials = errors.New("invalid credentials")

const defaultSessionDuration = 30 * 24 * time.Hour

func (svc *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	if svc.emailFilter != nil && !svc.emailFilter.MayContain(email) {
		return nil, ErrInvalidCredentials
	}

	user, err := svc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		var notFoundErr *UserByEmailNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	timeNow := time.Now().UTC()

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: timeNow,
		ExpiresAt: timeNow.Add(defaultSessionDuration),
	}

	err = svc.sessionRepo.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	err := svc.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	session, err := svc.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		err = svc.sessionRepo.Delete(ctx, sessionID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to delete expired session", "sessionId", sessionID, "error", err)
		}

		return nil, &SessionExpiredError{ID: sessionID}
	}

	return session, nil
}

// PurgeExpiredSessions removes every session that expired before now.
func (svc *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := svc.sessionRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return deleted, nil
}

func (svc *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	user, err := svc.userRepo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	user.PasswordHash = ""

	return user, nil
}

func (svc *Service) GetCurrentUser(ctx context.Context) (*User, error) {
	userID, ok := authcontext.GetUserID(ctx)
	if !ok {
		return nil, ErrCurrentUserNotFound
	}

	user, err := svc.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return user, nil
}
