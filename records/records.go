package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nasermirzaei89/labbook/discuss"
)

const ServiceName = "github.com/nasermirzaei89/labbook/records"

type Service interface {
	CreateRecord(ctx context.Context, req CreateRecordRequest) (record *Record, err error)
	GetRecord(ctx context.Context, kind discuss.EntityKind, id int64) (record *Record, err error)
	ListRecords(ctx context.Context, kind discuss.EntityKind) (records []*Record, err error)
}

type RecordService struct {
	recordRepo RecordRepository
}

var _ Service = (*RecordService)(nil)

func NewService(recordRepo RecordRepository) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
	}
}

type CreateRecordRequest struct {
	Kind    discuss.EntityKind
	OwnerID int64
	Title   string
	Body    string
}

func (svc *RecordService) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	if !req.Kind.IsValid() {
		return nil, &discuss.InvalidEntityKindError{Kind: req.Kind}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &EmptyTitleError{}
	}

	record := &Record{
		Kind:      req.Kind,
		OwnerID:   req.OwnerID,
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: time.Now().UTC(),
	}

	err := svc.recordRepo.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	return record, nil
}

func (svc *RecordService) GetRecord(ctx context.Context, kind discuss.EntityKind, id int64) (*Record, error) {
	if !kind.IsValid() {
		return nil, &discuss.InvalidEntityKindError{Kind: kind}
	}

	record, err := svc.recordRepo.Find(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find record: %w", err)
	}

	return record, nil
}

func (svc *RecordService) ListRecords(ctx context.Context, kind discuss.EntityKind) ([]*Record, error) {
	if !kind.IsValid() {
		return nil, &discuss.InvalidEntityKindError{Kind: kind}
	}

	records, err := svc.recordRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}
