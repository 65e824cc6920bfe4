package discuss

import (
	"fmt"
	"strconv"
)

// EntityKind names the storage partition a comment lives in.
type EntityKind string

const (
	EntityKindExperiment EntityKind = "experiments"
	EntityKindItem       EntityKind = "items"
)

func (kind EntityKind) IsValid() bool {
	switch kind {
	case EntityKindExperiment, EntityKindItem:
		return true
	default:
		return false
	}
}

// CommentsTable is the table holding comments of this kind.
func (kind EntityKind) CommentsTable() string {
	return string(kind) + "_comments"
}

type InvalidEntityKindError struct {
	Kind EntityKind
}

func (err InvalidEntityKindError) Error() string {
	return fmt.Sprintf("invalid entity kind: %q", err.Kind)
}

// Entity is the experiment or database item a comment is attached to.
type Entity struct {
	Kind EntityKind
	ID   int64

	// Notifiable is true when new comments should alert the entity owner.
	Notifiable bool
}

func ExperimentEntity(id int64) Entity {
	return Entity{Kind: EntityKindExperiment, ID: id, Notifiable: true}
}

func ItemEntity(id int64) Entity {
	return Entity{Kind: EntityKindItem, ID: id, Notifiable: false}
}

// NewEntity builds the entity context for kind, or fails for an unknown kind.
func NewEntity(kind EntityKind, id int64) (Entity, error) {
	switch kind {
	case EntityKindExperiment:
		return ExperimentEntity(id), nil
	case EntityKindItem:
		return ItemEntity(id), nil
	default:
		return Entity{}, &InvalidEntityKindError{Kind: kind}
	}
}

// ViewPath is the path of the entity's view page.
func (e Entity) ViewPath() string {
	return "/" + string(e.Kind) + "/" + strconv.FormatInt(e.ID, 10)
}
