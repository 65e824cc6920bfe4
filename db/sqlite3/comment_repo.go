package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/labbook/discuss"
)

type CommentRepository struct {
	db *sql.DB
}

var _ discuss.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const (
	commentFieldID        = "id"
	commentFieldItemID    = "item_id"
	commentFieldAuthorID  = "userid"
	commentFieldContent   = "comment"
	commentFieldCreatedAt = "created_at"

	commentAlias = "c"
	authorAlias  = "u"
)

func commentColumn(field string) string {
	return commentAlias + "." + field
}

func commentColumns() []string {
	return []string{
		commentColumn(commentFieldID),
		commentColumn(commentFieldItemID),
		commentColumn(commentFieldAuthorID),
		"COALESCE(" + authorAlias + "." + userFieldFirstName + " || ' ' || " +
			authorAlias + "." + userFieldLastName + ", '')",
		commentColumn(commentFieldContent),
		commentColumn(commentFieldCreatedAt),
	}
}

func scanComment(row sq.RowScanner) (*discuss.Comment, error) {
	var comment discuss.Comment

	err := row.Scan(
		&comment.ID,
		&comment.ItemID,
		&comment.AuthorID,
		&comment.AuthorFullName,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &comment, nil
}

func commentsTable(kind discuss.EntityKind) (string, error) {
	if !kind.IsValid() {
		return "", &discuss.InvalidEntityKindError{Kind: kind}
	}

	return kind.CommentsTable(), nil
}

func selectComments(table string) sq.SelectBuilder {
	return sq.Select(commentColumns()...).
		From(table + " " + commentAlias).
		LeftJoin(fmt.Sprintf(
			"%s %s ON %s.%s = %s",
			tableUsers, authorAlias, authorAlias, userFieldID, commentColumn(commentFieldAuthorID),
		))
}

func (repo *CommentRepository) Insert(ctx context.Context, kind discuss.EntityKind, comment *discuss.Comment) error {
	table, err := commentsTable(kind)
	if err != nil {
		return err
	}

	q := sq.Insert(table).
		Columns(commentFieldItemID, commentFieldAuthorID, commentFieldContent, commentFieldCreatedAt).
		Values(comment.ItemID, comment.AuthorID, comment.Content, comment.CreatedAt)

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	comment.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	return nil
}

func (repo *CommentRepository) Find(ctx context.Context, kind discuss.EntityKind, id int64) (*discuss.Comment, error) {
	table, err := commentsTable(kind)
	if err != nil {
		return nil, err
	}

	q := selectComments(table).
		Where(sq.Eq{commentColumn(commentFieldID): id})

	q = q.RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &discuss.CommentNotFoundError{Kind: kind, ID: id}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

func (repo *CommentRepository) List(
	ctx context.Context,
	params *discuss.ListCommentsParams,
) ([]*discuss.Comment, error) {
	table, err := commentsTable(params.Kind)
	if err != nil {
		return nil, err
	}

	query := selectComments(table).
		Where(sq.Eq{commentColumn(commentFieldItemID): params.ItemID}).
		OrderBy(commentColumn(commentFieldCreatedAt)+" ASC", commentColumn(commentFieldID)+" ASC")

	query = query.RunWith(repo.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	comments := make([]*discuss.Comment, 0)

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}

		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return comments, nil
}

func (repo *CommentRepository) Count(ctx context.Context, params *discuss.ListCommentsParams) (int, error) {
	table, err := commentsTable(params.Kind)
	if err != nil {
		return 0, err
	}

	q := sq.Select("COUNT(*)").
		From(table).
		Where(sq.Eq{commentFieldItemID: params.ItemID})

	q = q.RunWith(repo.db)

	var count int

	err = q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}

func (repo *CommentRepository) Update(ctx context.Context, params *discuss.UpdateCommentParams) (int64, error) {
	table, err := commentsTable(params.Kind)
	if err != nil {
		return 0, err
	}

	q := sq.Update(table).
		Set(commentFieldContent, params.Content).
		Where(sq.Eq{commentFieldID: params.ID, commentFieldAuthorID: params.AuthorID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (repo *CommentRepository) Delete(ctx context.Context, params *discuss.DeleteCommentParams) (int64, error) {
	table, err := commentsTable(params.Kind)
	if err != nil {
		return 0, err
	}

	q := sq.Delete(table).
		Where(sq.Eq{commentFieldID: params.ID, commentFieldAuthorID: params.AuthorID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to exec delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
