package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/records"
)

type RecordRepository struct {
	db *sql.DB
}

var _ records.RecordRepository = (*RecordRepository)(nil)

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const (
	recordFieldID        = "id"
	recordFieldOwnerID   = "userid"
	recordFieldTitle     = "title"
	recordFieldBody      = "body"
	recordFieldCreatedAt = "created_at"
)

func recordColumns() []string {
	return []string{
		recordFieldID,
		recordFieldOwnerID,
		recordFieldTitle,
		recordFieldBody,
		recordFieldCreatedAt,
	}
}

func scanRecord(kind discuss.EntityKind, row sq.RowScanner) (*records.Record, error) {
	record := records.Record{Kind: kind}

	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Title,
		&record.Body,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &record, nil
}

// recordsTable is the table named after kind: experiments or items.
func recordsTable(kind discuss.EntityKind) (string, error) {
	if !kind.IsValid() {
		return "", &discuss.InvalidEntityKindError{Kind: kind}
	}

	return string(kind), nil
}

func (repo *RecordRepository) Insert(ctx context.Context, record *records.Record) error {
	table, err := recordsTable(record.Kind)
	if err != nil {
		return err
	}

	q := sq.Insert(table).
		Columns(recordColumns()[1:]...).
		Values(record.OwnerID, record.Title, record.Body, record.CreatedAt)

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	record.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	return nil
}

func (repo *RecordRepository) Find(ctx context.Context, kind discuss.EntityKind, id int64) (*records.Record, error) {
	table, err := recordsTable(kind)
	if err != nil {
		return nil, err
	}

	q := sq.Select(recordColumns()...).
		From(table).
		Where(sq.Eq{recordFieldID: id})

	q = q.RunWith(repo.db)

	record, err := scanRecord(kind, q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &records.RecordNotFoundError{Kind: kind, ID: id}
		}

		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	return record, nil
}

func (repo *RecordRepository) List(ctx context.Context, kind discuss.EntityKind) ([]*records.Record, error) {
	table, err := recordsTable(kind)
	if err != nil {
		return nil, err
	}

	q := sq.Select(recordColumns()...).
		From(table).
		OrderBy(recordFieldCreatedAt+" DESC", recordFieldID+" DESC")

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	list := make([]*records.Record, 0)

	for rows.Next() {
		record, err := scanRecord(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan record failed: %w", err)
		}

		list = append(list, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return list, nil
}
