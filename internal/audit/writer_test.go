package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"atelier/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLogRepository struct {
	InsertFunc      func(ctx context.Context, entry domain.OrderLog) error
	ListByOrderFunc func(ctx context.Context, orderID string) ([]domain.OrderLog, error)
	inserted        []domain.OrderLog
}

func (m *mockLogRepository) Insert(ctx context.Context, entry domain.OrderLog) error {
	m.inserted = append(m.inserted, entry)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	return nil
}

func (m *mockLogRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderLog, error) {
	return m.ListByOrderFunc(ctx, orderID)
}

func TestWriter_Record_BuildsEntry(t *testing.T) {
	repo := &mockLogRepository{}
	w := NewWriter(repo, zap.NewNop())
	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	actor := &domain.Actor{ID: "staff-7", Name: "Luis Ortega", Role: domain.RoleOperationsAdmin}
	w.Record(context.Background(), Entry{
		OrderID:     "order-1",
		Actor:       actor,
		Action:      domain.LogActionStatusChange,
		Field:       "status",
		OldValue:    Value("FOR_EVALUATION"),
		NewValue:    Value("IN_PRODUCTION"),
		Description: "Status changed from FOR_EVALUATION to IN_PRODUCTION",
	})

	require.Len(t, repo.inserted, 1)
	entry := repo.inserted[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "order-1", entry.OrderID)
	assert.Equal(t, "staff-7", *entry.ActorID)
	assert.Equal(t, "Luis Ortega", *entry.ActorName)
	assert.Equal(t, "status", entry.FieldChanged)
	assert.Equal(t, "FOR_EVALUATION", *entry.OldValue)
	assert.Equal(t, "IN_PRODUCTION", *entry.NewValue)
	assert.Equal(t, fixed, entry.CreatedAt)
}

func TestWriter_Record_SystemActor(t *testing.T) {
	repo := &mockLogRepository{}
	w := NewWriter(repo, zap.NewNop())

	w.Record(context.Background(), Entry{OrderID: "order-1", Action: domain.LogActionOrderCancelled})

	require.Len(t, repo.inserted, 1)
	assert.Nil(t, repo.inserted[0].ActorID)
	assert.Nil(t, repo.inserted[0].ActorName)
}

func TestWriter_Record_SwallowsInsertFailure(t *testing.T) {
	repo := &mockLogRepository{
		InsertFunc: func(ctx context.Context, entry domain.OrderLog) error {
			return errors.New("table is read only")
		},
	}
	w := NewWriter(repo, zap.NewNop())

	assert.NotPanics(t, func() {
		w.Record(context.Background(), Entry{OrderID: "order-1", Action: domain.LogActionPriceUpdate})
	})
	assert.Len(t, repo.inserted, 1)
}

func TestWriter_Record_UniqueIDs(t *testing.T) {
	repo := &mockLogRepository{}
	w := NewWriter(repo, zap.NewNop())

	w.Record(context.Background(), Entry{OrderID: "order-1", Action: domain.LogActionPriceUpdate})
	w.Record(context.Background(), Entry{OrderID: "order-1", Action: domain.LogActionDeadlineUpdate})

	require.Len(t, repo.inserted, 2)
	assert.NotEqual(t, repo.inserted[0].ID, repo.inserted[1].ID)
}

func TestWriter_History(t *testing.T) {
	newest := domain.OrderLog{ID: "b", OrderID: "order-1", Action: domain.LogActionContractSigned}
	oldest := domain.OrderLog{ID: "a", OrderID: "order-1", Action: domain.LogActionStaffSigned}
	repo := &mockLogRepository{
		ListByOrderFunc: func(ctx context.Context, orderID string) ([]domain.OrderLog, error) {
			assert.Equal(t, "order-1", orderID)
			return []domain.OrderLog{newest, oldest}, nil
		},
	}
	w := NewWriter(repo, zap.NewNop())

	logs, err := w.History(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, []domain.OrderLog{newest, oldest}, logs)
}
