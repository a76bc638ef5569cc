package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusForEvaluation      OrderStatus = "FOR_EVALUATION"
	OrderStatusContractSigning    OrderStatus = "CONTRACT_SIGNING"
	OrderStatusWaitingForPayment  OrderStatus = "WAITING_FOR_PAYMENT"
	OrderStatusVerifyingPayment   OrderStatus = "VERIFYING_PAYMENT"
	OrderStatusInProduction       OrderStatus = "IN_PRODUCTION"
	OrderStatusQualityCheck       OrderStatus = "QUALITY_CHECK"
	OrderStatusReadyForPickup     OrderStatus = "READY_FOR_PICKUP"
	OrderStatusWaitingForShipment OrderStatus = "WAITING_FOR_SHIPMENT"
	OrderStatusInTransit          OrderStatus = "IN_TRANSIT"
	OrderStatusCompleted          OrderStatus = "COMPLETED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
)

// settableStatuses are the statuses staff may move an order to directly.
// CONTRACT_SIGNING, QUALITY_CHECK and READY_FOR_PICKUP can be stored on an
// order but are entered through other flows.
var settableStatuses = map[OrderStatus]bool{
	OrderStatusForEvaluation:      true,
	OrderStatusWaitingForPayment:  true,
	OrderStatusVerifyingPayment:   true,
	OrderStatusInProduction:       true,
	OrderStatusWaitingForShipment: true,
	OrderStatusInTransit:          true,
	OrderStatusCompleted:          true,
	OrderStatusCancelled:          true,
}

var operationsStatuses = map[OrderStatus]bool{
	OrderStatusInProduction:   true,
	OrderStatusQualityCheck:   true,
	OrderStatusReadyForPickup: true,
	OrderStatusCompleted:      true,
}

// ParseSettableStatus reports whether s names a status that SetStatus accepts.
func ParseSettableStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	if !settableStatuses[status] {
		return "", false
	}
	return status, true
}

// IsCancellable reports whether an order in this status may still be cancelled.
// Only pre-payment statuses qualify.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusForEvaluation || s == OrderStatusWaitingForPayment
}

// NotifiesOperations reports whether entering this status must alert the
// operations management team.
func (s OrderStatus) NotifiesOperations() bool {
	return operationsStatuses[s]
}

// StatusAfterCustomerSignature is the promotion rule applied when the customer
// signs the contract: an order waiting in CONTRACT_SIGNING moves on to
// WAITING_FOR_PAYMENT, every other status is left as is.
func StatusAfterCustomerSignature(current OrderStatus) (OrderStatus, bool) {
	if current == OrderStatusContractSigning {
		return OrderStatusWaitingForPayment, true
	}
	return current, false
}

type Order struct {
	ID           string
	CustomerID   string
	Status       OrderStatus
	TotalPrice   decimal.NullDecimal
	Deadline     *time.Time
	TrackingLink *string

	SalesAdminSigned       bool
	SalesAdminSignedDate   *time.Time
	SalesAdminSignature    *string
	SalesAdminContractData json.RawMessage

	ContractSigned     bool
	ContractSignedDate *time.Time
	ContractData       json.RawMessage

	RequiresContractAmendment bool
	AmendmentReason           AmendmentReason
	AmendmentDetails          *AmendmentDetails
	AmendmentRequestedDate    *time.Time
	LastAmendmentDate         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEstablishedPrice reports whether a non-zero price was set before.
func (o *Order) HasEstablishedPrice() bool {
	return o.TotalPrice.Valid && !o.TotalPrice.Decimal.IsZero()
}
