package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusUseCase_SetStatus_Success(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusWaitingForShipment))
	link := "https://track.example.com/XY123"

	order, err := f.status.SetStatus(context.Background(), "order-1", "IN_TRANSIT", operations, &link)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInTransit, order.Status)
	assert.Equal(t, link, *order.TrackingLink)

	stored := f.repo.stored(t, "order-1")
	assert.Equal(t, domain.OrderStatusInTransit, stored.Status)
	assert.Equal(t, link, *stored.TrackingLink)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, domain.LogActionStatusChange, entry.Action)
	assert.Equal(t, "WAITING_FOR_SHIPMENT", *entry.OldValue)
	assert.Equal(t, "IN_TRANSIT", *entry.NewValue)
	assert.Contains(t, entry.Description, "tracking link added")
	assert.Equal(t, operations, entry.Actor)

	assert.Empty(t, f.notifier.admins, "IN_TRANSIT does not alert operations")
	require.Len(t, f.notifier.customer, 1)
	assert.Equal(t, "cust-1", f.notifier.customer[0].CustomerID)
	assert.Equal(t, "Order in transit", f.notifier.customer[0].Message.Title)
	assert.Contains(t, f.notifier.customer[0].Message.Body, link)
}

func TestStatusUseCase_SetStatus_NotifiesOperations(t *testing.T) {
	for _, status := range []string{"IN_PRODUCTION", "COMPLETED"} {
		t.Run(status, func(t *testing.T) {
			f := newFixture(newOrder("order-1", domain.OrderStatusVerifyingPayment))

			_, err := f.status.SetStatus(context.Background(), "order-1", status, salesAdmin, nil)

			require.NoError(t, err)
			require.Len(t, f.notifier.admins, 1)
			assert.Equal(t, domain.RoleOperationsAdmin, f.notifier.admins[0].Role)
			assert.Len(t, f.notifier.customer, 1)
		})
	}
}

func TestStatusUseCase_SetStatus_InvalidStatus(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusForEvaluation))

	for _, status := range []string{"SHIPPED", "", "QUALITY_CHECK", "CONTRACT_SIGNING"} {
		order, err := f.status.SetStatus(context.Background(), "order-1", status, salesAdmin, nil)

		assert.Nil(t, order)
		ise, ok := apperrors.IsInvalidStatusError(err)
		require.True(t, ok, status)
		assert.Equal(t, status, ise.Status)
	}
	assert.Zero(t, f.repo.writes)
	assert.Empty(t, f.audit.entries)
}

func TestStatusUseCase_SetStatus_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.status.SetStatus(context.Background(), "missing", "IN_PRODUCTION", salesAdmin, nil)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestStatusUseCase_SetStatus_CustomerForbidden(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusForEvaluation))

	_, err := f.status.SetStatus(context.Background(), "order-1", "IN_PRODUCTION", orderCustomer, nil)

	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
	assert.Zero(t, f.repo.writes)
}

func TestStatusUseCase_SetStatus_PersistenceFailureAborts(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusVerifyingPayment))
	f.repo.UpdateStatusFunc = func(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error {
		return errors.New("connection refused")
	}

	order, err := f.status.SetStatus(context.Background(), "order-1", "IN_PRODUCTION", salesAdmin, nil)

	assert.Nil(t, order)
	pe, ok := apperrors.IsPersistenceError(err)
	require.True(t, ok)
	assert.EqualError(t, pe.Cause, "connection refused")
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.notifier.customer)
	assert.Empty(t, f.notifier.admins)
}

func TestStatusUseCase_SetStatus_RetriesDeadlock(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusVerifyingPayment))
	attempts := 0
	f.repo.UpdateStatusFunc = func(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error {
		attempts++
		if attempts < 3 {
			return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
		}
		return nil
	}

	order, err := f.status.SetStatus(context.Background(), "order-1", "IN_PRODUCTION", salesAdmin, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, domain.OrderStatusInProduction, order.Status)
}

func TestStatusUseCase_SetStatus_DeadlockRetriesExhausted(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusVerifyingPayment))
	attempts := 0
	f.repo.UpdateStatusFunc = func(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error {
		attempts++
		return &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	}

	_, err := f.status.SetStatus(context.Background(), "order-1", "IN_PRODUCTION", salesAdmin, nil)

	_, ok := apperrors.IsPersistenceError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
}

func TestStatusUseCase_SetStatus_CancelledUsesCancelRules(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusInProduction))

	_, err := f.status.SetStatus(context.Background(), "order-1", "CANCELLED", salesAdmin, nil)

	_, ok := apperrors.IsNotCancellableError(err)
	assert.True(t, ok)
	assert.Equal(t, domain.OrderStatusInProduction, f.repo.stored(t, "order-1").Status)

	f = newFixture(newOrder("order-2", domain.OrderStatusForEvaluation))
	order, err := f.status.SetStatus(context.Background(), "order-2", "CANCELLED", salesAdmin, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	assert.Equal(t, []string{domain.LogActionOrderCancelled}, f.audit.actions())
	assert.Contains(t, f.audit.entries[0].Description, "Not specified")
}

func TestStatusUseCase_Cancel_AllowedStatuses(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusForEvaluation, domain.OrderStatusWaitingForPayment} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(newOrder("order-1", status))

			order, err := f.status.Cancel(context.Background(), "order-1", "Customer changed their mind", salesAdmin)

			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, order.Status)
			assert.Equal(t, domain.OrderStatusCancelled, f.repo.stored(t, "order-1").Status)

			require.Len(t, f.audit.entries, 1)
			assert.Equal(t, domain.LogActionOrderCancelled, f.audit.entries[0].Action)
			assert.Equal(t, string(status), *f.audit.entries[0].OldValue)
			assert.Contains(t, f.audit.entries[0].Description, "Customer changed their mind")

			require.Len(t, f.notifier.admins, 1)
			assert.Equal(t, domain.RoleAllStaff, f.notifier.admins[0].Role)
			assert.Equal(t, domain.NotificationTypeOrderCancelled, f.notifier.admins[0].Message.Type)
		})
	}
}

func TestStatusUseCase_Cancel_DefaultReason(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusForEvaluation))

	_, err := f.status.Cancel(context.Background(), "order-1", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "Order cancelled. Reason: Not specified", f.audit.entries[0].Description)
	assert.Nil(t, f.audit.entries[0].Actor)
}

func TestStatusUseCase_Cancel_NotCancellable(t *testing.T) {
	statuses := []domain.OrderStatus{
		domain.OrderStatusContractSigning,
		domain.OrderStatusVerifyingPayment,
		domain.OrderStatusInProduction,
		domain.OrderStatusQualityCheck,
		domain.OrderStatusReadyForPickup,
		domain.OrderStatusWaitingForShipment,
		domain.OrderStatusInTransit,
		domain.OrderStatusCompleted,
		domain.OrderStatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(newOrder("order-1", status))

			order, err := f.status.Cancel(context.Background(), "order-1", "", salesAdmin)

			assert.Nil(t, order)
			nce, ok := apperrors.IsNotCancellableError(err)
			require.True(t, ok)
			assert.Equal(t, string(status), nce.Status)
			assert.Equal(t, status, f.repo.stored(t, "order-1").Status)
			assert.Zero(t, f.repo.writes)
			assert.Empty(t, f.audit.entries)
			assert.Empty(t, f.notifier.admins)
		})
	}
}

// Scenario 3: cancelling an order in production fails and leaves it untouched.
func TestScenario_CancelInProduction(t *testing.T) {
	f := newFixture(newOrder("order-1", domain.OrderStatusInProduction))

	_, err := f.status.Cancel(context.Background(), "order-1", "Too slow", operations)

	_, ok := apperrors.IsNotCancellableError(err)
	assert.True(t, ok)
	assert.Equal(t, domain.OrderStatusInProduction, f.repo.stored(t, "order-1").Status)
}
