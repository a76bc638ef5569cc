package usecase

import (
	"context"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"

	"go.uber.org/zap"
)

type LogHistory interface {
	History(ctx context.Context, orderID string) ([]domain.OrderLog, error)
}

// QueryUseCase serves the read side: an order and its audit trail.
type QueryUseCase struct {
	store   orderStore
	history LogHistory
}

func NewQueryUseCase(repo OrderRepository, history LogHistory, logger *zap.Logger) *QueryUseCase {
	return &QueryUseCase{
		store:   newOrderStore(repo, logger, 1),
		history: history,
	}
}

func (uc *QueryUseCase) GetOrder(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error) {
	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := requireReader(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Logs returns the audit trail of an order, most recent first.
func (uc *QueryUseCase) Logs(ctx context.Context, orderID string, actor *domain.Actor) ([]domain.OrderLog, error) {
	if _, err := uc.GetOrder(ctx, orderID, actor); err != nil {
		return nil, err
	}

	logs, err := uc.history.History(ctx, orderID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load order logs", err)
	}
	return logs, nil
}

func requireReader(actor *domain.Actor, order *domain.Order) error {
	if actor.IsStaff() {
		return nil
	}
	return requireOwner(actor, order)
}
