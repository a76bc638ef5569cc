// Package audit keeps the append-only change history of orders.
package audit

import (
	"context"
	"time"

	"atelier/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LogRepository interface {
	Insert(ctx context.Context, entry domain.OrderLog) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderLog, error)
}

// Entry describes one change to record.
type Entry struct {
	OrderID     string
	Actor       *domain.Actor
	Action      string
	Field       string
	OldValue    *string
	NewValue    *string
	Description string
}

type Writer struct {
	repo   LogRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewWriter(repo LogRepository, logger *zap.Logger) *Writer {
	return &Writer{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record appends an entry to the order's trail. It never fails: a rejected
// insert is reported to the operational log and dropped.
func (w *Writer) Record(ctx context.Context, e Entry) {
	entry := domain.OrderLog{
		ID:           uuid.NewString(),
		OrderID:      e.OrderID,
		ActorID:      e.Actor.IDPtr(),
		ActorName:    e.Actor.NamePtr(),
		Action:       e.Action,
		FieldChanged: e.Field,
		OldValue:     e.OldValue,
		NewValue:     e.NewValue,
		Description:  e.Description,
		CreatedAt:    w.now().UTC(),
	}

	if err := w.repo.Insert(ctx, entry); err != nil {
		w.logger.Error("failed to write order log",
			zap.String("orderId", e.OrderID),
			zap.String("action", e.Action),
			zap.Error(err),
		)
		return
	}

	w.logger.Debug("order log written", zap.String("orderId", e.OrderID), zap.String("action", e.Action))
}

// History returns the order's trail, most recent first.
func (w *Writer) History(ctx context.Context, orderID string) ([]domain.OrderLog, error) {
	return w.repo.ListByOrder(ctx, orderID)
}

// Value is a helper for optional old/new values.
func Value(s string) *string {
	return &s
}
