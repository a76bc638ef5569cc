package usecase

import (
	"context"
	"encoding/json"
	"time"

	"atelier/internal/audit"
	"atelier/internal/domain"
	"atelier/internal/notification"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal, amendment domain.AmendmentDecision, now time.Time) error
	UpdateDeadline(ctx context.Context, id string, deadline time.Time, amendment domain.AmendmentDecision, now time.Time) error
	UpdateStaffSignature(ctx context.Context, id, signature string, snapshot json.RawMessage, amendment domain.AmendmentDecision, now time.Time) error
	UpdateCustomerSignature(ctx context.Context, id string, snapshot json.RawMessage, promoteTo *domain.OrderStatus, resolvesAmendment bool, now time.Time) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Notifier interface {
	NotifyCustomer(ctx context.Context, customerID, orderID string, msg notification.Message)
	NotifyAdmins(ctx context.Context, orderID string, role domain.Role, msg notification.Message)
	SendSignatureRequired(ctx context.Context, order *domain.Order)
}

// TermsResult is returned by price and deadline updates.
type TermsResult struct {
	Order             *domain.Order
	RequiresAmendment bool
}

// SignatureResult is returned by both contract signatures.
type SignatureResult struct {
	Order       *domain.Order
	IsAmendment bool
}
