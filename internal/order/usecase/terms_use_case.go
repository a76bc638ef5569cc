package usecase

import (
	"context"
	"fmt"
	"time"

	"atelier/internal/audit"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notification"
	"atelier/internal/order/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const deadlineLayout = "2006-01-02"

// TermsUseCase updates the contract terms of an order: price and deadline.
type TermsUseCase struct {
	store    orderStore
	audit    AuditRecorder
	notifier Notifier
	logger   *zap.Logger
}

func NewTermsUseCase(
	repo OrderRepository,
	auditRecorder AuditRecorder,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *TermsUseCase {
	return &TermsUseCase{
		store:    newOrderStore(repo, logger, maxRetryAttempts),
		audit:    auditRecorder,
		notifier: notifier,
		logger:   logger,
	}
}

func (uc *TermsUseCase) UpdatePrice(ctx context.Context, orderID string, price decimal.Decimal, actor *domain.Actor) (*TermsResult, error) {
	if price.IsNegative() {
		return nil, apperrors.NewValidationError("invalid price", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := uc.store.now().UTC()
	decision := service.DetectPriceAmendment(order, price, actor, now)

	err = uc.store.persist(ctx, orderID, "update order price", func() error {
		return uc.store.repo.UpdatePrice(ctx, orderID, price, decision, now)
	})
	if err != nil {
		return nil, err
	}

	var oldValue *string
	if order.TotalPrice.Valid {
		oldValue = audit.Value(order.TotalPrice.Decimal.StringFixed(2))
	}
	newlyRequired := applyAmendment(order, decision, now)
	order.TotalPrice = decimal.NewNullDecimal(price)
	order.UpdatedAt = now

	uc.logger.Info("order price updated",
		zap.String("orderId", orderID),
		zap.String("price", price.StringFixed(2)),
		zap.Bool("requiresAmendment", decision.Required),
	)

	description := fmt.Sprintf("Price updated to %s", price.StringFixed(2))
	if oldValue != nil {
		description = fmt.Sprintf("Price updated from %s to %s", *oldValue, price.StringFixed(2))
	}
	if decision.Required {
		description += fmt.Sprintf(" (%s%%, contract amendment required)", decision.Details.ChangePercentage)
	}
	uc.audit.Record(ctx, audit.Entry{
		OrderID:     orderID,
		Actor:       actor,
		Action:      domain.LogActionPriceUpdate,
		Field:       "totalPrice",
		OldValue:    oldValue,
		NewValue:    audit.Value(price.StringFixed(2)),
		Description: description,
	})

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, orderID, notification.PriceUpdatedMessage(order))
	if newlyRequired {
		uc.notifier.SendSignatureRequired(ctx, order)
	}

	return &TermsResult{Order: order, RequiresAmendment: decision.Required}, nil
}

func (uc *TermsUseCase) UpdateDeadline(ctx context.Context, orderID string, deadline time.Time, actor *domain.Actor) (*TermsResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := uc.store.now().UTC()
	decision := service.DetectDeadlineAmendment(order, deadline, actor, now)

	err = uc.store.persist(ctx, orderID, "update order deadline", func() error {
		return uc.store.repo.UpdateDeadline(ctx, orderID, deadline, decision, now)
	})
	if err != nil {
		return nil, err
	}

	var oldValue *string
	if order.Deadline != nil {
		oldValue = audit.Value(order.Deadline.Format(deadlineLayout))
	}
	newlyRequired := applyAmendment(order, decision, now)
	order.Deadline = &deadline
	order.UpdatedAt = now

	uc.logger.Info("order deadline updated",
		zap.String("orderId", orderID),
		zap.Time("deadline", deadline),
		zap.Bool("requiresAmendment", decision.Required),
	)

	description := fmt.Sprintf("Deadline updated to %s", deadline.Format(deadlineLayout))
	if oldValue != nil {
		description = fmt.Sprintf("Deadline updated from %s to %s", *oldValue, deadline.Format(deadlineLayout))
	}
	if decision.Required {
		description += fmt.Sprintf(" (%+d days, contract amendment required)", *decision.Details.DaysDifference)
	}
	uc.audit.Record(ctx, audit.Entry{
		OrderID:     orderID,
		Actor:       actor,
		Action:      domain.LogActionDeadlineUpdate,
		Field:       "deadline",
		OldValue:    oldValue,
		NewValue:    audit.Value(deadline.Format(deadlineLayout)),
		Description: description,
	})

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, orderID, notification.DeadlineUpdatedMessage(order))
	if newlyRequired {
		uc.notifier.SendSignatureRequired(ctx, order)
	}

	return &TermsResult{Order: order, RequiresAmendment: decision.Required}, nil
}

// applyAmendment mirrors a persisted decision onto the in-memory order and
// reports whether the amendment flag went from unset to set.
func applyAmendment(order *domain.Order, decision domain.AmendmentDecision, now time.Time) bool {
	if !decision.Required {
		return false
	}

	newlyRequired := !order.RequiresContractAmendment
	order.RequiresContractAmendment = true
	order.AmendmentReason = decision.Reason
	order.AmendmentDetails = decision.Details
	order.AmendmentRequestedDate = &now
	return newlyRequired
}
