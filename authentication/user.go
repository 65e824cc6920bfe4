package authentication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	RegisteredAt time.Time
}

func (user *User) FullName() string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

type UserRepository interface {
	// Insert stores user and sets its ID.
	Insert(ctx context.Context, user *User) (err error)
	Find(ctx context.Context, userID int64) (user *User, err error)
	FindByEmail(ctx context.Context, email string) (user *User, err error)
	ListEmails(ctx context.Context) (emails []string, err error)
}

type UserNotFoundError struct {
	ID int64
}

func (err UserNotFoundError) Error() string {
	return fmt.Sprintf("user with id %d not found", err.ID)
}

type UserByEmailNotFoundError struct {
	Email string
}

func (err UserByEmailNotFoundError) Error() string {
	return fmt.Sprintf("user with email %q not found", err.Email)
}

type UserAlreadyExistsError struct {
	Email string
}

func (err UserAlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", err.Email)
}

type InvalidInputError struct {
	Field  string
	Reason string
}

func (err InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

var ErrCurrentUserNotFound = errors.New("current user not found")
