package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"atelier/internal/domain"
)

// Message is the content of a customer or staff facing notification.
type Message struct {
	Title string
	Body  string
	Type  string
}

var statusMessages = map[domain.OrderStatus]Message{
	domain.OrderStatusForEvaluation: {
		Title: "Order under evaluation",
		Body:  "Your order is being evaluated by our team. We will contact you with a quote shortly.",
	},
	domain.OrderStatusContractSigning: {
		Title: "Contract ready for signing",
		Body:  "The contract for your order is ready. Please review and sign it to continue.",
	},
	domain.OrderStatusWaitingForPayment: {
		Title: "Waiting for payment",
		Body:  "Your order is waiting for payment. Production starts once the payment is confirmed.",
	},
	domain.OrderStatusVerifyingPayment: {
		Title: "Verifying payment",
		Body:  "We received your payment and are verifying it.",
	},
	domain.OrderStatusInProduction: {
		Title: "Order in production",
		Body:  "Good news! Your order is now in production.",
	},
	domain.OrderStatusQualityCheck: {
		Title: "Quality check",
		Body:  "Your order finished production and is going through quality control.",
	},
	domain.OrderStatusReadyForPickup: {
		Title: "Ready for pickup",
		Body:  "Your order is ready for pickup.",
	},
	domain.OrderStatusWaitingForShipment: {
		Title: "Waiting for shipment",
		Body:  "Your order is packed and waiting to be handed to the carrier.",
	},
	domain.OrderStatusInTransit: {
		Title: "Order in transit",
		Body:  "Your order is on its way.",
	},
	domain.OrderStatusCompleted: {
		Title: "Order completed",
		Body:  "Your order has been completed. Thank you for choosing us!",
	},
	domain.OrderStatusCancelled: {
		Title: "Order cancelled",
		Body:  "Your order has been cancelled.",
	},
}

// StatusMessage returns the customer message for an order entering status.
// A tracking link, when present, is appended to the body.
func StatusMessage(status domain.OrderStatus, trackingLink *string) Message {
	msg, ok := statusMessages[status]
	if !ok {
		msg = Message{
			Title: "Order status updated",
			Body:  fmt.Sprintf("Your order status is now %s.", status),
		}
	}
	msg.Type = domain.NotificationTypeStatusUpdate
	if trackingLink != nil && *trackingLink != "" {
		msg.Body = fmt.Sprintf("%s Track your shipment: %s", msg.Body, *trackingLink)
	}
	return msg
}

func CancelledMessage(reason string) Message {
	return Message{
		Title: "Order cancelled",
		Body:  fmt.Sprintf("Your order has been cancelled. Reason: %s", reason),
		Type:  domain.NotificationTypeOrderCancelled,
	}
}

func PriceUpdatedMessage(order *domain.Order) Message {
	return Message{
		Title: "Order price updated",
		Body:  fmt.Sprintf("The price of your order is now %s.", order.TotalPrice.Decimal.StringFixed(2)),
		Type:  domain.NotificationTypePriceUpdate,
	}
}

func DeadlineUpdatedMessage(order *domain.Order) Message {
	deadline := "to be defined"
	if order.Deadline != nil {
		deadline = order.Deadline.Format("January 2, 2006")
	}
	return Message{
		Title: "Order deadline updated",
		Body:  fmt.Sprintf("The estimated completion date of your order is now %s.", deadline),
		Type:  domain.NotificationTypeDeadlineUpdate,
	}
}

func ContractReadyMessage() Message {
	return Message{
		Title: "Contract ready for your signature",
		Body:  "Our team signed the contract for your order. Please review and sign it.",
		Type:  domain.NotificationTypeContractReady,
	}
}

func ContractSignedMessage(isAmendment bool) Message {
	if isAmendment {
		return Message{
			Title: "Contract amendment signed",
			Body:  "Thank you for signing the amended contract. Your order continues with the updated terms.",
			Type:  domain.NotificationTypeContractSigned,
		}
	}
	return Message{
		Title: "Contract signed",
		Body:  "Thank you for signing the contract. Your order will move forward.",
		Type:  domain.NotificationTypeContractSigned,
	}
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Title}}</h2>
  <p>Hello {{.CustomerName}},</p>
  <p>{{.Body}}</p>
  {{- if .Rows}}
  <table style="border-collapse: collapse;">
    {{- range .Rows}}
    <tr><td style="padding: 4px 12px 4px 0;"><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>
    {{- end}}
  </table>
  {{- end}}
  <p style="color: #888; font-size: 12px;">Order {{.OrderID}}</p>
</body>
</html>`))

type row struct {
	Label string
	Value string
}

type emailView struct {
	Title        string
	CustomerName string
	Body         string
	OrderID      string
	Rows         []row
}

func renderEmail(view emailView) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}

// amendmentRows lists the changed terms shown in the signature required email.
func amendmentRows(details *domain.AmendmentDetails) []row {
	if details == nil {
		return nil
	}

	var rows []row
	if details.OldPrice != nil && details.NewPrice != nil {
		rows = append(rows,
			row{Label: "Previous price", Value: details.OldPrice.StringFixed(2)},
			row{Label: "New price", Value: details.NewPrice.StringFixed(2)},
		)
		if details.ChangePercentage != "" {
			rows = append(rows, row{Label: "Change", Value: details.ChangePercentage + "%"})
		}
	}
	if details.OldDeadline != nil && details.NewDeadline != nil {
		rows = append(rows,
			row{Label: "Previous deadline", Value: details.OldDeadline.Format("2006-01-02")},
			row{Label: "New deadline", Value: details.NewDeadline.Format("2006-01-02")},
		)
		if details.DaysDifference != nil {
			rows = append(rows, row{Label: "Difference", Value: fmt.Sprintf("%d days", *details.DaysDifference)})
		}
	}
	if details.ChangedBy != "" {
		rows = append(rows, row{Label: "Changed by", Value: details.ChangedBy})
	}
	return rows
}

func signatureRequiredBody(reason domain.AmendmentReason) string {
	switch reason {
	case domain.AmendmentReasonPriceChange:
		return "The price of your order changed after you signed the contract. Please review and sign the amended contract."
	case domain.AmendmentReasonDeadlineChange:
		return "The deadline of your order changed after you signed the contract. Please review and sign the amended contract."
	default:
		return "The contract of your order was revised after you signed it. Please review and sign the updated contract."
	}
}
