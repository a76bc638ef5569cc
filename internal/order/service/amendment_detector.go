package service

import (
	"math"
	"time"

	"atelier/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DetectPriceAmendment decides whether moving the order to newPrice invalidates
// the customer's signature. The first price assignment (old price unset or zero)
// and any change before the customer signed never require an amendment.
func DetectPriceAmendment(order *domain.Order, newPrice decimal.Decimal, actor *domain.Actor, now time.Time) domain.AmendmentDecision {
	if !order.ContractSigned || !order.HasEstablishedPrice() {
		return domain.NoAmendment()
	}

	oldPrice := order.TotalPrice.Decimal
	if oldPrice.Equal(newPrice) {
		return domain.NoAmendment()
	}

	difference := newPrice.Sub(oldPrice)
	percentage := difference.Div(oldPrice).Mul(hundred)

	return domain.AmendmentDecision{
		Required: true,
		Reason:   domain.AmendmentReasonPriceChange,
		Details: &domain.AmendmentDetails{
			OldPrice:         &oldPrice,
			NewPrice:         &newPrice,
			PriceDifference:  &difference,
			ChangePercentage: percentage.StringFixed(2),
			ChangedBy:        actor.DisplayName(),
			ChangedAt:        now,
		},
	}
}

// DetectDeadlineAmendment is the deadline counterpart of DetectPriceAmendment.
func DetectDeadlineAmendment(order *domain.Order, newDeadline time.Time, actor *domain.Actor, now time.Time) domain.AmendmentDecision {
	if !order.ContractSigned || order.Deadline == nil {
		return domain.NoAmendment()
	}

	oldDeadline := *order.Deadline
	if oldDeadline.Equal(newDeadline) {
		return domain.NoAmendment()
	}

	days := int(math.Round(newDeadline.Sub(oldDeadline).Hours() / 24))

	return domain.AmendmentDecision{
		Required: true,
		Reason:   domain.AmendmentReasonDeadlineChange,
		Details: &domain.AmendmentDetails{
			OldDeadline:    &oldDeadline,
			NewDeadline:    &newDeadline,
			DaysDifference: &days,
			ChangedBy:      actor.DisplayName(),
			ChangedAt:      now,
		},
	}
}

// DetectContractRevision covers staff re-signing a contract the customer has
// already signed: the new baseline needs the customer's signature again. An
// amendment that is already pending keeps its reason and details.
func DetectContractRevision(order *domain.Order, actor *domain.Actor, now time.Time) domain.AmendmentDecision {
	if !order.ContractSigned || order.RequiresContractAmendment {
		return domain.NoAmendment()
	}

	return domain.AmendmentDecision{
		Required: true,
		Reason:   domain.AmendmentReasonContractRevision,
		Details: &domain.AmendmentDetails{
			ChangedBy: actor.DisplayName(),
			ChangedAt: now,
		},
	}
}
