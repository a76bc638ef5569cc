// Package notification delivers in-app and email notices about order changes.
// Every delivery is best-effort: failures are logged and never returned.
package notification

import (
	"context"
	"time"

	"atelier/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	FindCustomer(ctx context.Context, id string) (*domain.Customer, error)
	InsertNotification(ctx context.Context, n domain.Notification) error
	InsertAdminNotification(ctx context.Context, n domain.AdminNotification) error
}

// EmailSender hands an email to the delivery collaborator.
type EmailSender interface {
	Send(ctx context.Context, email domain.Email) error
}

type Dispatcher struct {
	store  Store
	sender EmailSender
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(store Store, sender EmailSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyCustomer writes the in-app notification when the customer resolves and
// emails the same content if the customer opted into email notifications.
func (d *Dispatcher) NotifyCustomer(ctx context.Context, customerID, orderID string, msg Message) {
	logger := d.logger.With(zap.String("orderId", orderID), zap.String("customerId", customerID))

	customer, err := d.store.FindCustomer(ctx, customerID)
	if err != nil {
		logger.Error("failed to resolve customer for notification", zap.Error(err))
		return
	}

	err = d.store.InsertNotification(ctx, domain.Notification{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		UserID:    customer.ID,
		Title:     msg.Title,
		Message:   msg.Body,
		Type:      msg.Type,
		CreatedAt: d.now().UTC(),
	})
	if err != nil {
		logger.Error("failed to create customer notification", zap.String("type", msg.Type), zap.Error(err))
	}

	if !customer.EmailNotifications || customer.Email == "" {
		return
	}

	d.sendEmail(ctx, logger, customer.Email, msg.Title, emailView{
		Title:        msg.Title,
		CustomerName: customer.Name,
		Body:         msg.Body,
		OrderID:      orderID,
	})
}

// NotifyAdmins raises a staff notification for the given role.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, orderID string, role domain.Role, msg Message) {
	err := d.store.InsertAdminNotification(ctx, domain.AdminNotification{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		RecipientRole: role,
		Title:         msg.Title,
		Message:       msg.Body,
		Type:          msg.Type,
		CreatedAt:     d.now().UTC(),
	})
	if err != nil {
		d.logger.Error("failed to create admin notification",
			zap.String("orderId", orderID),
			zap.String("role", string(role)),
			zap.Error(err),
		)
	}
}

// SendSignatureRequired emails the customer that the signed contract changed
// and needs a new signature. It is transactional mail, so the customer's
// notification preference is not consulted.
func (d *Dispatcher) SendSignatureRequired(ctx context.Context, order *domain.Order) {
	logger := d.logger.With(zap.String("orderId", order.ID), zap.String("customerId", order.CustomerID))

	customer, err := d.store.FindCustomer(ctx, order.CustomerID)
	if err != nil {
		logger.Error("failed to resolve customer for amendment email", zap.Error(err))
		return
	}
	if customer.Email == "" {
		logger.Warn("customer has no email, skipping amendment email")
		return
	}

	title := "Contract signature required"
	d.sendEmail(ctx, logger, customer.Email, title, emailView{
		Title:        title,
		CustomerName: customer.Name,
		Body:         signatureRequiredBody(order.AmendmentReason),
		OrderID:      order.ID,
		Rows:         amendmentRows(order.AmendmentDetails),
	})
}

func (d *Dispatcher) sendEmail(ctx context.Context, logger *zap.Logger, to, subject string, view emailView) {
	html, err := renderEmail(view)
	if err != nil {
		logger.Error("failed to render email", zap.Error(err))
		return
	}

	if err := d.sender.Send(ctx, domain.Email{To: to, Subject: subject, HTML: html}); err != nil {
		logger.Error("failed to send email", zap.String("subject", subject), zap.Error(err))
		return
	}

	logger.Debug("email handed off", zap.String("subject", subject))
}
