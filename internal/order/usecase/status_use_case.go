package usecase

import (
	"context"
	"fmt"

	"atelier/internal/audit"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notification"

	"go.uber.org/zap"
)

const defaultCancelReason = "Not specified"

// StatusUseCase moves orders through their lifecycle statuses.
type StatusUseCase struct {
	store    orderStore
	audit    AuditRecorder
	notifier Notifier
	logger   *zap.Logger
}

func NewStatusUseCase(
	repo OrderRepository,
	auditRecorder AuditRecorder,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *StatusUseCase {
	return &StatusUseCase{
		store:    newOrderStore(repo, logger, maxRetryAttempts),
		audit:    auditRecorder,
		notifier: notifier,
		logger:   logger,
	}
}

// SetStatus applies a staff-selected status. Moving to CANCELLED goes through
// the same precondition as Cancel.
func (uc *StatusUseCase) SetStatus(ctx context.Context, orderID, status string, actor *domain.Actor, trackingLink *string) (*domain.Order, error) {
	newStatus, ok := domain.ParseSettableStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidStatusError(status)
	}

	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if newStatus == domain.OrderStatusCancelled {
		return uc.cancel(ctx, order, defaultCancelReason, actor)
	}

	trackingLink = optionalString(trackingLink)
	now := uc.store.now().UTC()

	err = uc.store.persist(ctx, orderID, "update order status", func() error {
		return uc.store.repo.UpdateStatus(ctx, orderID, newStatus, trackingLink, now)
	})
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = newStatus
	if trackingLink != nil {
		order.TrackingLink = trackingLink
	}
	order.UpdatedAt = now

	uc.logger.Info("order status changed",
		zap.String("orderId", orderID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(newStatus)),
	)

	description := fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
	if trackingLink != nil {
		description += " (tracking link added)"
	}
	uc.audit.Record(ctx, audit.Entry{
		OrderID:     orderID,
		Actor:       actor,
		Action:      domain.LogActionStatusChange,
		Field:       "status",
		OldValue:    audit.Value(string(oldStatus)),
		NewValue:    audit.Value(string(newStatus)),
		Description: description,
	})

	if newStatus.NotifiesOperations() {
		uc.notifier.NotifyAdmins(ctx, orderID, domain.RoleOperationsAdmin, notification.Message{
			Title: fmt.Sprintf("Order moved to %s", newStatus),
			Body:  fmt.Sprintf("Order %s was moved from %s to %s by %s.", orderID, oldStatus, newStatus, actor.DisplayName()),
			Type:  domain.NotificationTypeStatusUpdate,
		})
	}

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, orderID, notification.StatusMessage(newStatus, trackingLink))

	return order, nil
}

// Cancel cancels an order that has not been paid yet.
func (uc *StatusUseCase) Cancel(ctx context.Context, orderID, reason string, actor *domain.Actor) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultCancelReason
	}

	return uc.cancel(ctx, order, reason, actor)
}

func (uc *StatusUseCase) cancel(ctx context.Context, order *domain.Order, reason string, actor *domain.Actor) (*domain.Order, error) {
	if !order.Status.IsCancellable() {
		return nil, apperrors.NewNotCancellableError(string(order.Status))
	}

	now := uc.store.now().UTC()
	err := uc.store.persist(ctx, order.ID, "cancel order", func() error {
		return uc.store.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled, nil, now)
	})
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = now

	uc.logger.Info("order cancelled", zap.String("orderId", order.ID), zap.String("from", string(oldStatus)))

	uc.audit.Record(ctx, audit.Entry{
		OrderID:     order.ID,
		Actor:       actor,
		Action:      domain.LogActionOrderCancelled,
		Field:       "status",
		OldValue:    audit.Value(string(oldStatus)),
		NewValue:    audit.Value(string(domain.OrderStatusCancelled)),
		Description: "Order cancelled. Reason: " + reason,
	})

	uc.notifier.NotifyAdmins(ctx, order.ID, domain.RoleAllStaff, notification.Message{
		Title: "Order cancelled",
		Body:  fmt.Sprintf("Order %s was cancelled by %s. Reason: %s", order.ID, actor.DisplayName(), reason),
		Type:  domain.NotificationTypeOrderCancelled,
	})

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, order.ID, notification.CancelledMessage(reason))

	return order, nil
}
