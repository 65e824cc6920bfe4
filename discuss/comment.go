package discuss

import (
	"context"
	"fmt"
	"time"
)

type Comment struct {
	ID             int64
	ItemID         int64
	AuthorID       int64
	AuthorFullName string
	Content        string
	CreatedAt      time.Time
}

type CommentRepository interface {
	Insert(ctx context.Context, kind EntityKind, comment *Comment) (err error)
	Find(ctx context.Context, kind EntityKind, id int64) (comment *Comment, err error)
	List(ctx context.Context, params *ListCommentsParams) (comments []*Comment, err error)
	Count(ctx context.Context, params *ListCommentsParams) (count int, err error)
	Update(ctx context.Context, params *UpdateCommentParams) (rowsAffected int64, err error)
	Delete(ctx context.Context, params *DeleteCommentParams) (rowsAffected int64, err error)
}

type ListCommentsParams struct {
	Kind   EntityKind
	ItemID int64
}

// UpdateCommentParams matches a row by both id and author.
type UpdateCommentParams struct {
	Kind     EntityKind
	ID       int64
	AuthorID int64
	Content  string
}

// DeleteCommentParams matches a row by both id and author.
type DeleteCommentParams struct {
	Kind     EntityKind
	ID       int64
	AuthorID int64
}

type CommentNotFoundError struct {
	Kind EntityKind
	ID   int64
}

func (err CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment with id %d not found in %s", err.ID, err.Kind)
}

// StorageError reports a failed persistence statement. The wrapped error is
// meant for logs, not for end users.
type StorageError struct {
	Op  string
	Err error
}

func (err StorageError) Error() string {
	return fmt.Sprintf("failed to %s comment: %v", err.Op, err.Err)
}

func (err StorageError) Unwrap() error {
	return err.Err
}

// InputTooShortError is returned when sanitized content is below the minimum length.
type InputTooShortError struct {
	Min int
}

func (err InputTooShortError) Error() string {
	return fmt.Sprintf("Input is too short! (minimum: %d)", err.Min)
}

// Outcome tells what an ownership-guarded mutation actually did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNotFound  Outcome = "notFound"
	OutcomeForbidden Outcome = "forbidden"
)

type UpdateCommentResult struct {
	Content string
	Outcome Outcome
}
