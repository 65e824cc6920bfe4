package discuss_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperationsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "comment_operations_total", Help: "test"},
		[]string{"operation", "kind", "outcome"},
	)
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	operations := newOperationsCounter()
	svc := discuss.NewMetricsMiddleware(operations, discuss.NewService(newMemoryCommentRepo(), nil))
	entity := discuss.Entity{Kind: discuss.EntityKindExperiment, ID: 7}

	id, err := svc.CreateComment(ctx, discuss.CreateCommentRequest{Entity: entity, AuthorID: 1, Content: "looks good"})
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, discuss.CreateCommentRequest{Entity: entity, AuthorID: 1, Content: "x"})
	require.Error(t, err)

	_, err = svc.ListComments(ctx, entity)
	require.NoError(t, err)

	res, err := svc.UpdateComment(ctx, discuss.UpdateCommentRequest{
		Entity: entity, CommentID: id, UserID: 2, Content: "hijacked",
	})
	require.NoError(t, err)
	assert.Equal(t, discuss.OutcomeForbidden, res.Outcome)

	outcome, err := svc.DeleteComment(ctx, discuss.DeleteCommentRequest{Entity: entity, CommentID: id + 100, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, discuss.OutcomeNotFound, outcome)

	outcome, err = svc.DeleteComment(ctx, discuss.DeleteCommentRequest{Entity: entity, CommentID: id, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, discuss.OutcomeApplied, outcome)

	kind := string(discuss.EntityKindExperiment)

	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("create", kind, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("create", kind, "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("list", kind, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("update", kind, "forbidden")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("delete", kind, "notFound")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(operations.WithLabelValues("delete", kind, "applied")), 0)
}

func TestMetricsNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "sent", result: "sent"},
		{name: "failed", err: errors.New("smtp down"), result: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			results := prometheus.NewCounterVec(
				prometheus.CounterOpts{Name: "notifications_total", Help: "test"},
				[]string{"result"},
			)

			notifier := discuss.NewMetricsNotifier(results, &stubNotifier{err: tt.err})
			entity := discuss.Entity{Kind: discuss.EntityKindItem, ID: 3, Notifiable: true}

			_, err := notifier.AlertOwner(context.Background(), entity, 1, "http://lab.example.com")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			assert.InDelta(t, 1, testutil.ToFloat64(results.WithLabelValues(tt.result)), 0)
			assert.Equal(t, 1, testutil.CollectAndCount(results))
		})
	}
}
