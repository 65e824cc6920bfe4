package discuss

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	operationCreate = "create"
	operationList   = "list"
	operationCount  = "count"
	operationUpdate = "update"
	operationDelete = "delete"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// MetricsMiddleware counts comment operations by operation, entity kind and
// outcome.
type MetricsMiddleware struct {
	operations *prometheus.CounterVec
	next       Service
}

var _ Service = (*MetricsMiddleware)(nil)

// NewMetricsMiddleware expects a counter labelled operation, kind and outcome.
func NewMetricsMiddleware(operations *prometheus.CounterVec, next Service) *MetricsMiddleware {
	return &MetricsMiddleware{
		operations: operations,
		next:       next,
	}
}

func (mw *MetricsMiddleware) observe(operation string, kind EntityKind, outcome string) {
	mw.operations.WithLabelValues(operation, string(kind), outcome).Inc()
}

func resultOutcome(err error) string {
	if err != nil {
		return outcomeError
	}

	return outcomeOK
}

func (mw *MetricsMiddleware) CreateComment(ctx context.Context, req CreateCommentRequest) (int64, error) {
	id, err := mw.next.CreateComment(ctx, req)
	mw.observe(operationCreate, req.Entity.Kind, resultOutcome(err))

	return id, err //nolint:wrapcheck
}

func (mw *MetricsMiddleware) ListComments(ctx context.Context, entity Entity) ([]*Comment, error) {
	comments, err := mw.next.ListComments(ctx, entity)
	mw.observe(operationList, entity.Kind, resultOutcome(err))

	return comments, err //nolint:wrapcheck
}

func (mw *MetricsMiddleware) CountComments(ctx context.Context, entity Entity) (int, error) {
	count, err := mw.next.CountComments(ctx, entity)
	mw.observe(operationCount, entity.Kind, resultOutcome(err))

	return count, err //nolint:wrapcheck
}

func (mw *MetricsMiddleware) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*UpdateCommentResult, error) {
	res, err := mw.next.UpdateComment(ctx, req)
	if err != nil {
		mw.observe(operationUpdate, req.Entity.Kind, outcomeError)

		return nil, err //nolint:wrapcheck
	}

	mw.observe(operationUpdate, req.Entity.Kind, string(res.Outcome))

	return res, nil
}

func (mw *MetricsMiddleware) DeleteComment(ctx context.Context, req DeleteCommentRequest) (Outcome, error) {
	outcome, err := mw.next.DeleteComment(ctx, req)
	if err != nil {
		mw.observe(operationDelete, req.Entity.Kind, outcomeError)

		return "", err //nolint:wrapcheck
	}

	mw.observe(operationDelete, req.Entity.Kind, string(outcome))

	return outcome, nil
}

// MetricsNotifier counts owner alerts as sent, skipped or failed.
type MetricsNotifier struct {
	results *prometheus.CounterVec
	next    Notifier
}

var _ Notifier = (*MetricsNotifier)(nil)

// NewMetricsNotifier expects a counter labelled result.
func NewMetricsNotifier(results *prometheus.CounterVec, next Notifier) *MetricsNotifier {
	return &MetricsNotifier{
		results: results,
		next:    next,
	}
}

func (n *MetricsNotifier) AlertOwner(ctx context.Context, entity Entity, commenterID int64, baseURL string) (int, error) {
	sent, err := n.next.AlertOwner(ctx, entity, commenterID, baseURL)

	switch {
	case err != nil:
		n.results.WithLabelValues("failed").Inc()
	case sent == 0:
		n.results.WithLabelValues("skipped").Inc()
	default:
		n.results.WithLabelValues("sent").Inc()
	}

	return sent, err //nolint:wrapcheck
}
