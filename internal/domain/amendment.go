package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AmendmentReason string

const (
	AmendmentReasonNone             AmendmentReason = ""
	AmendmentReasonPriceChange      AmendmentReason = "PRICE_CHANGE"
	AmendmentReasonDeadlineChange   AmendmentReason = "DEADLINE_CHANGE"
	AmendmentReasonContractRevision AmendmentReason = "CONTRACT_REVISION"
)

// AmendmentDetails is the diff that caused a signed contract to need a new
// customer signature. Only the fields relevant to the reason are set.
type AmendmentDetails struct {
	OldPrice         *decimal.Decimal `json:"oldPrice,omitempty"`
	NewPrice         *decimal.Decimal `json:"newPrice,omitempty"`
	PriceDifference  *decimal.Decimal `json:"priceDifference,omitempty"`
	ChangePercentage string           `json:"changePercentage,omitempty"`

	OldDeadline    *time.Time `json:"oldDeadline,omitempty"`
	NewDeadline    *time.Time `json:"newDeadline,omitempty"`
	DaysDifference *int       `json:"daysDifference,omitempty"`

	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// AmendmentDecision is the outcome of comparing proposed terms with the stored ones.
type AmendmentDecision struct {
	Required bool
	Reason   AmendmentReason
	Details  *AmendmentDetails
}

func NoAmendment() AmendmentDecision {
	return AmendmentDecision{}
}
