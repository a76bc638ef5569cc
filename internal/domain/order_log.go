package domain

import "time"

const (
	LogActionStatusChange    = "STATUS_CHANGE"
	LogActionOrderCancelled  = "ORDER_CANCELLED"
	LogActionPriceUpdate     = "PRICE_UPDATE"
	LogActionDeadlineUpdate  = "DEADLINE_UPDATE"
	LogActionStaffSigned     = "CONTRACT_STAFF_SIGNED"
	LogActionContractSigned  = "CONTRACT_SIGNED"
	LogActionAmendmentSigned = "AMENDMENT_SIGNED"
)

// OrderLog is one immutable entry of an order's audit trail.
type OrderLog struct {
	ID           string
	OrderID      string
	ActorID      *string
	ActorName    *string
	Action       string
	FieldChanged string
	OldValue     *string
	NewValue     *string
	Description  string
	CreatedAt    time.Time
}
