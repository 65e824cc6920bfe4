package discuss

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nasermirzaei89/labbook/authorization"
)

const (
	ActionCreateComment = "createComment"
	ActionListComments  = "listComments"
	ActionCountComments = "countComments"
	ActionUpdateComment = "updateComment"
	ActionDeleteComment = "deleteComment"
)

type AuthorizationMiddleware struct {
	authzClient *authorization.Client
	next        Service
}

var _ Service = (*AuthorizationMiddleware)(nil)

func NewAuthorizationMiddleware(authzClient *authorization.Client, next Service) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		authzClient: authzClient,
		next:        next,
	}
}

func entityObject(entity Entity) string {
	return string(entity.Kind) + ":" + strconv.FormatInt(entity.ID, 10)
}

func (mw *AuthorizationMiddleware) CreateComment(ctx context.Context, req CreateCommentRequest) (int64, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, entityObject(req.Entity), ActionCreateComment)
	if err != nil {
		return 0, fmt.Errorf("failed to check authorization: %w", err)
	}

	id, err := mw.next.CreateComment(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("failed to call next method: %w", err)
	}

	return id, nil
}

func (mw *AuthorizationMiddleware) ListComments(ctx context.Context, entity Entity) ([]*Comment, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, entityObject(entity), ActionListComments)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	comments, err := mw.next.ListComments(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return comments, nil
}

func (mw *AuthorizationMiddleware) CountComments(ctx context.Context, entity Entity) (int, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, entityObject(entity), ActionCountComments)
	if err != nil {
		return 0, fmt.Errorf("failed to check authorization: %w", err)
	}

	count, err := mw.next.CountComments(ctx, entity)
	if err != nil {
		return 0, fmt.Errorf("failed to call next method: %w", err)
	}

	return count, nil
}

func (mw *AuthorizationMiddleware) UpdateComment(
	ctx context.Context,
	req UpdateCommentRequest,
) (*UpdateCommentResult, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, entityObject(req.Entity), ActionUpdateComment)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	res, err := mw.next.UpdateComment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return res, nil
}

func (mw *AuthorizationMiddleware) DeleteComment(ctx context.Context, req DeleteCommentRequest) (Outcome, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, entityObject(req.Entity), ActionDeleteComment)
	if err != nil {
		return "", fmt.Errorf("failed to check authorization: %w", err)
	}

	outcome, err := mw.next.DeleteComment(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call next method: %w", err)
	}

	return outcome, nil
}
