package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"atelier/internal/audit"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notification"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memoryOrderRepository applies updates to stored copies the way the MySQL
// statements do. Any *Func field overrides the matching method.
type memoryOrderRepository struct {
	orders map[string]domain.Order
	writes int

	FindByIDFunc                func(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatusFunc            func(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error
	UpdatePriceFunc             func(ctx context.Context, id string, price decimal.Decimal, amendment domain.AmendmentDecision, now time.Time) error
	UpdateCustomerSignatureFunc func(ctx context.Context, id string, snapshot json.RawMessage, promoteTo *domain.OrderStatus, resolvesAmendment bool, now time.Time) error
}

func newMemoryOrderRepository(orders ...domain.Order) *memoryOrderRepository {
	repo := &memoryOrderRepository{orders: map[string]domain.Order{}}
	for _, o := range orders {
		repo.orders[o.ID] = o
	}
	return repo
}

func (m *memoryOrderRepository) get(id string) (domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return domain.Order{}, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	return order, nil
}

func (m *memoryOrderRepository) stored(t *testing.T, id string) domain.Order {
	t.Helper()
	order, ok := m.orders[id]
	if !ok {
		t.Fatalf("order %s not stored", id)
	}
	return order
}

func (m *memoryOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	order, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *memoryOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, trackingLink, now)
	}
	order, err := m.get(id)
	if err != nil {
		return err
	}
	order.Status = status
	if trackingLink != nil {
		order.TrackingLink = trackingLink
	}
	order.UpdatedAt = now
	m.save(order)
	return nil
}

func (m *memoryOrderRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal, amendment domain.AmendmentDecision, now time.Time) error {
	if m.UpdatePriceFunc != nil {
		return m.UpdatePriceFunc(ctx, id, price, amendment, now)
	}
	order, err := m.get(id)
	if err != nil {
		return err
	}
	order.TotalPrice = decimal.NewNullDecimal(price)
	setAmendment(&order, amendment, now)
	order.UpdatedAt = now
	m.save(order)
	return nil
}

func (m *memoryOrderRepository) UpdateDeadline(ctx context.Context, id string, deadline time.Time, amendment domain.AmendmentDecision, now time.Time) error {
	order, err := m.get(id)
	if err != nil {
		return err
	}
	order.Deadline = &deadline
	setAmendment(&order, amendment, now)
	order.UpdatedAt = now
	m.save(order)
	return nil
}

func (m *memoryOrderRepository) UpdateStaffSignature(ctx context.Context, id, signature string, snapshot json.RawMessage, amendment domain.AmendmentDecision, now time.Time) error {
	order, err := m.get(id)
	if err != nil {
		return err
	}
	order.SalesAdminSigned = true
	order.SalesAdminSignature = &signature
	order.SalesAdminContractData = snapshot
	order.SalesAdminSignedDate = &now
	setAmendment(&order, amendment, now)
	order.UpdatedAt = now
	m.save(order)
	return nil
}

func (m *memoryOrderRepository) UpdateCustomerSignature(ctx context.Context, id string, snapshot json.RawMessage, promoteTo *domain.OrderStatus, resolvesAmendment bool, now time.Time) error {
	if m.UpdateCustomerSignatureFunc != nil {
		return m.UpdateCustomerSignatureFunc(ctx, id, snapshot, promoteTo, resolvesAmendment, now)
	}
	order, err := m.get(id)
	if err != nil {
		return err
	}
	order.ContractSigned = true
	order.ContractSignedDate = &now
	order.ContractData = snapshot
	if promoteTo != nil && order.Status == domain.OrderStatusContractSigning {
		order.Status = *promoteTo
	}
	if resolvesAmendment {
		order.RequiresContractAmendment = false
		order.AmendmentReason = domain.AmendmentReasonNone
		order.LastAmendmentDate = &now
	}
	order.UpdatedAt = now
	m.save(order)
	return nil
}

func (m *memoryOrderRepository) save(order domain.Order) {
	m.writes++
	m.orders[order.ID] = order
}

func setAmendment(order *domain.Order, amendment domain.AmendmentDecision, now time.Time) {
	if !amendment.Required {
		return
	}
	order.RequiresContractAmendment = true
	order.AmendmentReason = amendment.Reason
	order.AmendmentDetails = amendment.Details
	order.AmendmentRequestedDate = &now
}

type mockAuditRecorder struct {
	entries []audit.Entry
}

func (m *mockAuditRecorder) Record(ctx context.Context, entry audit.Entry) {
	m.entries = append(m.entries, entry)
}

func (m *mockAuditRecorder) actions() []string {
	actions := make([]string, len(m.entries))
	for i, e := range m.entries {
		actions[i] = e.Action
	}
	return actions
}

type customerNotice struct {
	CustomerID string
	OrderID    string
	Message    notification.Message
}

type adminNotice struct {
	OrderID string
	Role    domain.Role
	Message notification.Message
}

type mockNotifier struct {
	customer          []customerNotice
	admins            []adminNotice
	signatureRequired []domain.Order
}

func (m *mockNotifier) NotifyCustomer(ctx context.Context, customerID, orderID string, msg notification.Message) {
	m.customer = append(m.customer, customerNotice{CustomerID: customerID, OrderID: orderID, Message: msg})
}

func (m *mockNotifier) NotifyAdmins(ctx context.Context, orderID string, role domain.Role, msg notification.Message) {
	m.admins = append(m.admins, adminNotice{OrderID: orderID, Role: role, Message: msg})
}

func (m *mockNotifier) SendSignatureRequired(ctx context.Context, order *domain.Order) {
	m.signatureRequired = append(m.signatureRequired, *order)
}

var (
	fixedNow      = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	salesAdmin    = &domain.Actor{ID: "staff-1", Name: "Ana Reyes", Role: domain.RoleSalesAdmin}
	operations    = &domain.Actor{ID: "staff-2", Name: "Luis Ortega", Role: domain.RoleOperationsAdmin}
	orderCustomer = &domain.Actor{ID: "cust-1", Name: "Carmen Diaz", Role: domain.RoleCustomer}
)

func newOrder(id string, status domain.OrderStatus) domain.Order {
	return domain.Order{ID: id, CustomerID: "cust-1", Status: status, CreatedAt: fixedNow, UpdatedAt: fixedNow}
}

type fixture struct {
	repo     *memoryOrderRepository
	audit    *mockAuditRecorder
	notifier *mockNotifier
	status   *StatusUseCase
	terms    *TermsUseCase
	contract *ContractUseCase
}

func newFixture(orders ...domain.Order) *fixture {
	f := &fixture{
		repo:     newMemoryOrderRepository(orders...),
		audit:    &mockAuditRecorder{},
		notifier: &mockNotifier{},
	}
	logger := zap.NewNop()

	f.status = NewStatusUseCase(f.repo, f.audit, f.notifier, logger, 3)
	f.terms = NewTermsUseCase(f.repo, f.audit, f.notifier, logger, 3)
	f.contract = NewContractUseCase(f.repo, f.audit, f.notifier, logger, 3)

	for _, s := range []*orderStore{&f.status.store, &f.terms.store, &f.contract.store} {
		s.now = func() time.Time { return fixedNow }
		s.sleep = func(time.Duration) {}
	}
	return f
}

// advance sets the fixture clock to d after fixedNow.
func (f *fixture) advance(d time.Duration) {
	fixedAt := fixedNow.Add(d)
	for _, s := range []*orderStore{&f.status.store, &f.terms.store, &f.contract.store} {
		s.now = func() time.Time { return fixedAt }
	}
}
