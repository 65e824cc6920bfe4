package records

import (
	"context"
	"fmt"

	"github.com/nasermirzaei89/labbook/authorization"
	"github.com/nasermirzaei89/labbook/discuss"
)

const (
	ActionCreateRecord = "createRecord"
	ActionGetRecord    = "getRecord"
	ActionListRecords  = "listRecords"
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

func (mw *AuthorizationMiddleware) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, string(req.Kind), ActionCreateRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	record, err := mw.next.CreateRecord(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return record, nil
}

func (mw *AuthorizationMiddleware) GetRecord(ctx context.Context, kind discuss.EntityKind, id int64) (*Record, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, string(kind), ActionGetRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	record, err := mw.next.GetRecord(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return record, nil
}

func (mw *AuthorizationMiddleware) ListRecords(ctx context.Context, kind discuss.EntityKind) ([]*Record, error) {
	err := mw.authzClient.CheckAccess(ctx, ServiceName, string(kind), ActionListRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to check authorization: %w", err)
	}

	records, err := mw.next.ListRecords(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to call next method: %w", err)
	}

	return records, nil
}
