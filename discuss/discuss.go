package discuss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const ServiceName = "github.com/nasermirzaei89/labbook/discuss"

type Service interface {
	CreateComment(ctx context.Context, req CreateCommentRequest) (id int64, err error)
	ListComments(ctx context.Context, entity Entity) (comments []*Comment, err error)
	CountComments(ctx context.Context, entity Entity) (count int, err error)
	UpdateComment(ctx context.Context, req UpdateCommentRequest) (res *UpdateCommentResult, err error)
	DeleteComment(ctx context.Context, req DeleteCommentRequest) (outcome Outcome, err error)
}

// Notifier alerts the owner of an entity that a comment was posted on it.
type Notifier interface {
	AlertOwner(ctx context.Context, entity Entity, commenterID int64, baseURL string) (sent int, err error)
}

type CommentService struct {
	commentRepo CommentRepository
	notifier    Notifier
}

var _ Service = (*CommentService)(nil)

// NewService creates a comment service. notifier may be nil to disable alerts.
func NewService(commentRepo CommentRepository, notifier Notifier) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		notifier:    notifier,
	}
}

type CreateCommentRequest struct {
	Entity   Entity
	AuthorID int64
	Content  string

	// BaseURL is the scheme and host the request came in on, used for links in notifications.
	BaseURL string
}

func (svc *CommentService) CreateComment(ctx context.Context, req CreateCommentRequest) (int64, error) {
	if !req.Entity.Kind.IsValid() {
		return 0, &InvalidEntityKindError{Kind: req.Entity.Kind}
	}

	content, err := PrepareContent(req.Content)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare content: %w", err)
	}

	comment := &Comment{
		ItemID:    req.Entity.ID,
		AuthorID:  req.AuthorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	svc.alertOwner(ctx, req.Entity, req.AuthorID, req.BaseURL)

	err = svc.commentRepo.Insert(ctx, req.Entity.Kind, comment)
	if err != nil {
		return 0, &StorageError{Op: "insert", Err: err}
	}

	return comment.ID, nil
}

// alertOwner logs notification failures and never fails the caller.
func (svc *CommentService) alertOwner(ctx context.Context, entity Entity, commenterID int64, baseURL string) {
	if svc.notifier == nil {
		return
	}

	sent, err := svc.notifier.AlertOwner(ctx, entity, commenterID, baseURL)
	if err != nil {
		slog.ErrorContext(
			ctx,
			"failed to alert entity owner",
			"kind", entity.Kind,
			"itemId", entity.ID,
			"commenterId", commenterID,
			"error", err,
		)

		return
	}

	slog.DebugContext(ctx, "entity owner alerted", "kind", entity.Kind, "itemId", entity.ID, "sent", sent)
}

func (svc *CommentService) ListComments(ctx context.Context, entity Entity) ([]*Comment, error) {
	if !entity.Kind.IsValid() {
		return nil, &InvalidEntityKindError{Kind: entity.Kind}
	}

	comments, err := svc.commentRepo.List(ctx, &ListCommentsParams{Kind: entity.Kind, ItemID: entity.ID})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	return comments, nil
}

func (svc *CommentService) CountComments(ctx context.Context, entity Entity) (int, error) {
	if !entity.Kind.IsValid() {
		return 0, &InvalidEntityKindError{Kind: entity.Kind}
	}

	count, err := svc.commentRepo.Count(ctx, &ListCommentsParams{Kind: entity.Kind, ItemID: entity.ID})
	if err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}

	return count, nil
}

type UpdateCommentRequest struct {
	Entity    Entity
	CommentID int64
	UserID    int64
	Content   string
}

// UpdateComment replaces the content of a comment owned by req.UserID.
// A missing comment or one written by somebody else is not an error; the
// result's Outcome tells which case applied and nothing is written.
func (svc *CommentService) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*UpdateCommentResult, error) {
	if !req.Entity.Kind.IsValid() {
		return nil, &InvalidEntityKindError{Kind: req.Entity.Kind}
	}

	content, err := PrepareContent(req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare content: %w", err)
	}

	outcome, err := svc.authorize(ctx, req.Entity, req.CommentID, req.UserID)
	if err != nil {
		return nil, err
	}

	if outcome != OutcomeApplied {
		return &UpdateCommentResult{Content: content, Outcome: outcome}, nil
	}

	rowsAffected, err := svc.commentRepo.Update(ctx, &UpdateCommentParams{
		Kind:     req.Entity.Kind,
		ID:       req.CommentID,
		AuthorID: req.UserID,
		Content:  content,
	})
	if err != nil {
		return nil, &StorageError{Op: "update", Err: err}
	}

	if rowsAffected == 0 {
		outcome = OutcomeNotFound
	}

	return &UpdateCommentResult{Content: content, Outcome: outcome}, nil
}

type DeleteCommentRequest struct {
	Entity    Entity
	CommentID int64
	UserID    int64
}

// DeleteComment permanently removes a comment owned by req.UserID, with the
// same silent outcomes as UpdateComment.
func (svc *CommentService) DeleteComment(ctx context.Context, req DeleteCommentRequest) (Outcome, error) {
	if !req.Entity.Kind.IsValid() {
		return "", &InvalidEntityKindError{Kind: req.Entity.Kind}
	}

	outcome, err := svc.authorize(ctx, req.Entity, req.CommentID, req.UserID)
	if err != nil {
		return "", err
	}

	if outcome != OutcomeApplied {
		return outcome, nil
	}

	rowsAffected, err := svc.commentRepo.Delete(ctx, &DeleteCommentParams{
		Kind:     req.Entity.Kind,
		ID:       req.CommentID,
		AuthorID: req.UserID,
	})
	if err != nil {
		return "", &StorageError{Op: "delete", Err: err}
	}

	if rowsAffected == 0 {
		return OutcomeNotFound, nil
	}

	return OutcomeApplied, nil
}

// authorize decides whether userID may change the comment. A comment attached
// to another entity counts as not found.
func (svc *CommentService) authorize(ctx context.Context, entity Entity, commentID, userID int64) (Outcome, error) {
	comment, err := svc.commentRepo.Find(ctx, entity.Kind, commentID)
	if err != nil {
		var notFoundErr *CommentNotFoundError
		if errors.As(err, &notFoundErr) {
			return OutcomeNotFound, nil
		}

		return "", &StorageError{Op: "find", Err: err}
	}

	switch {
	case comment.ItemID != entity.ID:
		return OutcomeNotFound, nil
	case comment.AuthorID != userID:
		return OutcomeForbidden, nil
	default:
		return OutcomeApplied, nil
	}
}
