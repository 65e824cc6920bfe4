package records

import (
	"context"
	"fmt"
	"time"

	"github.com/nasermirzaei89/labbook/discuss"
)

// Record is an experiment or a database item.
type Record struct {
	ID        int64
	Kind      discuss.EntityKind
	OwnerID   int64
	Title     string
	Body      string
	CreatedAt time.Time
}

// Entity is the comment context of the record.
func (r *Record) Entity() discuss.Entity {
	entity, err := discuss.NewEntity(r.Kind, r.ID)
	if err != nil {
		return discuss.Entity{Kind: r.Kind, ID: r.ID}
	}

	return entity
}

type RecordRepository interface {
	// Insert stores record and sets its ID.
	Insert(ctx context.Context, record *Record) (err error)
	Find(ctx context.Context, kind discuss.EntityKind, id int64) (record *Record, err error)
	List(ctx context.Context, kind discuss.EntityKind) (records []*Record, err error)
}

type RecordNotFoundError struct {
	Kind discuss.EntityKind
	ID   int64
}

func (err RecordNotFoundError) Error() string {
	return fmt.Sprintf("record with id %d not found in %s", err.ID, err.Kind)
}

type EmptyTitleError struct{}

func (err EmptyTitleError) Error() string {
	return "title must not be empty"
}
