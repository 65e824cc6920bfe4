package discuss_test

import (
	"context"
	"testing"

	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	authcontext "github.com/nasermirzaei89/labbook/authentication/context"
	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/authorization/casbin"
	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (s *stubService) CreateComment(context.Context, discuss.CreateCommentRequest) (int64, error) {
	return 1, nil
}

func (s *stubService) ListComments(context.Context, discuss.Entity) ([]*discuss.Comment, error) {
	return []*discuss.Comment{}, nil
}

func (s *stubService) CountComments(context.Context, discuss.Entity) (int, error) {
	return 0, nil
}

func (s *stubService) UpdateComment(
	_ context.Context,
	req discuss.UpdateCommentRequest,
) (*discuss.UpdateCommentResult, error) {
	return &discuss.UpdateCommentResult{Content: req.Content, Outcome: discuss.OutcomeApplied}, nil
}

func (s *stubService) DeleteComment(context.Context, discuss.DeleteCommentRequest) (discuss.Outcome, error) {
	return discuss.OutcomeApplied, nil
}

const discussPolicy = `g, system:anonymous, system:unauthenticated

p, system:authenticated, github.com/nasermirzaei89/labbook/discuss, *, createComment
p, system:authenticated, github.com/nasermirzaei89/labbook/discuss, *, listComments
p, system:unauthenticated, github.com/nasermirzaei89/labbook/discuss, *, listComments
p, system:authenticated, github.com/nasermirzaei89/labbook/discuss, *, countComments
p, system:unauthenticated, github.com/nasermirzaei89/labbook/discuss, *, countComments
p, system:authenticated, github.com/nasermirzaei89/labbook/discuss, *, updateComment
p, system:authenticated, github.com/nasermirzaei89/labbook/discuss, *, deleteComment
`

func TestAuthorizationMiddleware(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	provider, err := casbin.NewAuthorizationProvider(stringadapter.NewAdapter(discussPolicy))
	require.NoError(t, err)

	authzSvc, err := authorization.NewService(provider)
	require.NoError(t, err)

	client := authorization.NewClient(authzSvc)
	svc := discuss.NewAuthorizationMiddleware(client, &stubService{})

	const userID int64 = 7

	err = client.AddToGroup(ctx, authcontext.UserSubject(userID), authcontext.Authenticated)
	require.NoError(t, err)

	entity := discuss.ExperimentEntity(42)

	anonymousCtx := ctx
	authenticatedCtx := authcontext.WithUserID(ctx, userID)

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		var accessDeniedErr *authorization.AccessDeniedError

		_, err := svc.CreateComment(anonymousCtx, discuss.CreateCommentRequest{
			Entity:   entity,
			AuthorID: userID,
			Content:  "comment",
		})
		require.ErrorAs(t, err, &accessDeniedErr)
		require.Equal(t, "experiments:42", accessDeniedErr.Object)

		_, err = svc.UpdateComment(anonymousCtx, discuss.UpdateCommentRequest{Entity: entity, CommentID: 1})
		require.ErrorAs(t, err, &accessDeniedErr)

		_, err = svc.DeleteComment(anonymousCtx, discuss.DeleteCommentRequest{Entity: entity, CommentID: 1})
		require.ErrorAs(t, err, &accessDeniedErr)

		_, err = svc.ListComments(anonymousCtx, entity)
		require.NoError(t, err)

		_, err = svc.CountComments(anonymousCtx, entity)
		require.NoError(t, err)
	})

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()

		_, err := svc.CreateComment(authenticatedCtx, discuss.CreateCommentRequest{
			Entity:   entity,
			AuthorID: userID,
			Content:  "comment",
		})
		require.NoError(t, err)

		res, err := svc.UpdateComment(authenticatedCtx, discuss.UpdateCommentRequest{
			Entity:    entity,
			CommentID: 1,
			UserID:    userID,
			Content:   "edited",
		})
		require.NoError(t, err)
		require.Equal(t, discuss.OutcomeApplied, res.Outcome)

		outcome, err := svc.DeleteComment(authenticatedCtx, discuss.DeleteCommentRequest{
			Entity:    entity,
			CommentID: 1,
			UserID:    userID,
		})
		require.NoError(t, err)
		require.Equal(t, discuss.OutcomeApplied, outcome)

		_, err = svc.ListComments(authenticatedCtx, entity)
		require.NoError(t, err)

		_, err = svc.CountComments(authenticatedCtx, entity)
		require.NoError(t, err)
	})
}
