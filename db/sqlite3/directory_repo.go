package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/labbook/authentication"
	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/notify"
	"github.com/nasermirzaei89/labbook/records"
)

// DirectoryRepository looks up notification recipients.
type DirectoryRepository struct {
	db *sql.DB
}

var _ notify.Directory = (*DirectoryRepository)(nil)

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func personColumns() []string {
	column := func(field string) string {
		return authorAlias + "." + field
	}

	return []string{
		column(userFieldID),
		column(userFieldEmail),
		"TRIM(" + column(userFieldFirstName) + " || ' ' || " + column(userFieldLastName) + ")",
	}
}

func scanPerson(row sq.RowScanner) (*notify.Person, error) {
	var person notify.Person

	err := row.Scan(&person.ID, &person.Email, &person.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &person, nil
}

func (repo *DirectoryRepository) Person(ctx context.Context, userID int64) (*notify.Person, error) {
	q := sq.Select(personColumns()...).
		From(tableUsers + " " + authorAlias).
		Where(sq.Eq{authorAlias + "." + userFieldID: userID})

	q = q.RunWith(repo.db)

	person, err := scanPerson(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &authentication.UserNotFoundError{ID: userID}
		}

		return nil, fmt.Errorf("failed to scan person: %w", err)
	}

	return person, nil
}

func (repo *DirectoryRepository) EntityOwner(ctx context.Context, entity discuss.Entity) (*notify.Person, error) {
	table, err := recordsTable(entity.Kind)
	if err != nil {
		return nil, err
	}

	q := sq.Select(personColumns()...).
		From(tableUsers + " " + authorAlias).
		Join(fmt.Sprintf("%s r ON r.%s = %s.%s", table, recordFieldOwnerID, authorAlias, userFieldID)).
		Where(sq.Eq{"r." + recordFieldID: entity.ID})

	q = q.RunWith(repo.db)

	person, err := scanPerson(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &records.RecordNotFoundError{Kind: entity.Kind, ID: entity.ID}
		}

		return nil, fmt.Errorf("failed to scan entity owner: %w", err)
	}

	return person, nil
}
