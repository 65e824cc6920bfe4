package authcontext

import (
	"context"
	"strconv"
)

type contextKeySessionID struct{}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID{}).(string)
	if !ok {
		return "", false
	}

	return sessionID, true
}

const (
	// Anonymous is the guest user id.
	Anonymous = "system:anonymous"

	Authenticated   = "system:authenticated"
	Unauthenticated = "system:unauthenticated"
)

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

type contextKeySubject struct{}

func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return Anonymous
	}

	return subject
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, subject)
}

// WithUserID stores a user as the current subject.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return WithSubject(ctx, UserSubject(userID))
}

// UserSubject is the authorization subject of a user.
func UserSubject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserID returns the current user id, or false for anonymous and service subjects.
func GetUserID(ctx context.Context) (int64, bool) {
	userID, err := strconv.ParseInt(GetSubject(ctx), 10, 64)
	if err != nil {
		return 0, false
	}

	return userID, true
}
