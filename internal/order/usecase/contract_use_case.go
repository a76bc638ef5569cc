package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"atelier/internal/audit"
	"atelier/internal/domain"
	apperrors "atelier/internal/errors"
	"atelier/internal/notification"
	"atelier/internal/order/service"

	"go.uber.org/zap"
)

// ContractUseCase runs the staff-then-customer contract signature workflow.
type ContractUseCase struct {
	store    orderStore
	audit    AuditRecorder
	notifier Notifier
	logger   *zap.Logger
}

func NewContractUseCase(
	repo OrderRepository,
	auditRecorder AuditRecorder,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *ContractUseCase {
	return &ContractUseCase{
		store:    newOrderStore(repo, logger, maxRetryAttempts),
		audit:    auditRecorder,
		notifier: notifier,
		logger:   logger,
	}
}

// SignAsStaff stores the staff signature and contract baseline. Staff may
// re-sign at any time; re-signing a contract the customer already signed
// opens a CONTRACT_REVISION amendment.
func (uc *ContractUseCase) SignAsStaff(ctx context.Context, orderID, signature string, snapshot json.RawMessage, actor *domain.Actor) (*SignatureResult, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, apperrors.NewValidationError("invalid signature", apperrors.ValidationDetail{
			Field:   "signature",
			Message: "signature is required",
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
	decision := service.DetectContractRevision(order, actor, now)

	err = uc.store.persist(ctx, orderID, "store staff signature", func() error {
		return uc.store.repo.UpdateStaffSignature(ctx, orderID, signature, snapshot, decision, now)
	})
	if err != nil {
		return nil, err
	}

	wasSigned := order.SalesAdminSigned
	isAmendment := decision.Required || order.RequiresContractAmendment
	newlyRequired := applyAmendment(order, decision, now)
	order.SalesAdminSigned = true
	order.SalesAdminSignature = &signature
	order.SalesAdminContractData = snapshot
	order.SalesAdminSignedDate = &now
	order.UpdatedAt = now

	uc.logger.Info("contract signed by staff",
		zap.String("orderId", orderID),
		zap.Bool("resigned", wasSigned),
		zap.Bool("requiresAmendment", isAmendment),
	)

	description := "Contract signed by " + actor.DisplayName()
	if wasSigned {
		description = "Contract re-signed by " + actor.DisplayName()
	}
	if isAmendment {
		description += " after customer signature, customer must sign the revision"
	}
	uc.audit.Record(ctx, audit.Entry{
		OrderID:     orderID,
		Actor:       actor,
		Action:      domain.LogActionStaffSigned,
		Field:       "salesAdminSigned",
		OldValue:    audit.Value(strconv.FormatBool(wasSigned)),
		NewValue:    audit.Value("true"),
		Description: description,
	})

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, orderID, notification.ContractReadyMessage())
	if newlyRequired {
		uc.notifier.SendSignatureRequired(ctx, order)
	}

	return &SignatureResult{Order: order, IsAmendment: isAmendment}, nil
}

// SignAsCustomer records the customer signature. It requires a prior staff
// signature and resolves a pending amendment when there is one.
func (uc *ContractUseCase) SignAsCustomer(ctx context.Context, orderID string, snapshot json.RawMessage, actor *domain.Actor) (*SignatureResult, error) {
	order, err := uc.store.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(actor, order); err != nil {
		return nil, err
	}

	if !order.SalesAdminSigned {
		return nil, apperrors.NewStaffSignatureRequiredError(orderID)
	}

	isAmendment := order.ContractSigned && order.RequiresContractAmendment
	nextStatus, promoted := domain.StatusAfterCustomerSignature(order.Status)
	var promoteTo *domain.OrderStatus
	if promoted {
		promoteTo = &nextStatus
	}
	now := uc.store.now().UTC()

	err = uc.store.persist(ctx, orderID, "store customer signature", func() error {
		return uc.store.repo.UpdateCustomerSignature(ctx, orderID, snapshot, promoteTo, isAmendment, now)
	})
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.ContractSigned = true
	order.ContractSignedDate = &now
	order.ContractData = snapshot
	order.Status = nextStatus
	if isAmendment {
		order.RequiresContractAmendment = false
		order.AmendmentReason = domain.AmendmentReasonNone
		order.LastAmendmentDate = &now
	}
	order.UpdatedAt = now

	uc.logger.Info("contract signed by customer",
		zap.String("orderId", orderID),
		zap.Bool("isAmendment", isAmendment),
		zap.Bool("statusPromoted", promoted),
	)

	entry := audit.Entry{
		OrderID:     orderID,
		Actor:       actor,
		Action:      domain.LogActionContractSigned,
		Field:       "contractSigned",
		OldValue:    audit.Value("false"),
		NewValue:    audit.Value("true"),
		Description: "Contract signed by customer",
	}
	if isAmendment {
		entry.Action = domain.LogActionAmendmentSigned
		entry.OldValue = audit.Value("true")
		entry.Description = "Contract amendment signed by customer"
	}
	uc.audit.Record(ctx, entry)

	if promoted {
		uc.audit.Record(ctx, audit.Entry{
			OrderID:     orderID,
			Actor:       actor,
			Action:      domain.LogActionStatusChange,
			Field:       "status",
			OldValue:    audit.Value(string(oldStatus)),
			NewValue:    audit.Value(string(nextStatus)),
			Description: fmt.Sprintf("Status changed from %s to %s after customer signature", oldStatus, nextStatus),
		})
	}

	uc.notifier.NotifyCustomer(ctx, order.CustomerID, orderID, notification.ContractSignedMessage(isAmendment))

	title := "Contract signed by customer"
	if isAmendment {
		title = "Contract amendment signed by customer"
	}
	uc.notifier.NotifyAdmins(ctx, orderID, domain.RoleSalesAdmin, notification.Message{
		Title: title,
		Body:  fmt.Sprintf("The customer signed the contract of order %s.", orderID),
		Type:  domain.NotificationTypeContractSigned,
	})

	return &SignatureResult{Order: order, IsAmendment: isAmendment}, nil
}
