package dto

import (
	"encoding/json"
	"time"

	"atelier/internal/domain"

	"github.com/shopspring/decimal"
)

type OrderResponse struct {
	ID           string           `json:"id"`
	CustomerID   string           `json:"customerId"`
	Status       string           `json:"status"`
	TotalPrice   *decimal.Decimal `json:"totalPrice"`
	Deadline     *time.Time       `json:"deadline"`
	TrackingLink *string          `json:"trackingLink"`

	SalesAdminSigned       bool            `json:"salesAdminSigned"`
	SalesAdminSignedDate   *time.Time      `json:"salesAdminSignedDate"`
	SalesAdminContractData json.RawMessage `json:"salesAdminContractData,omitempty"`

	ContractSigned     bool            `json:"contractSigned"`
	ContractSignedDate *time.Time      `json:"contractSignedDate"`
	ContractData       json.RawMessage `json:"contractData,omitempty"`

	RequiresContractAmendment bool                     `json:"requiresContractAmendment"`
	AmendmentReason           *string                  `json:"amendmentReason"`
	AmendmentDetails          *domain.AmendmentDetails `json:"amendmentDetails"`
	AmendmentRequestedDate    *time.Time               `json:"amendmentRequestedDate"`
	LastAmendmentDate         *time.Time               `json:"lastAmendmentDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewOrderResponse(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:                        order.ID,
		CustomerID:                order.CustomerID,
		Status:                    string(order.Status),
		Deadline:                  order.Deadline,
		TrackingLink:              order.TrackingLink,
		SalesAdminSigned:          order.SalesAdminSigned,
		SalesAdminSignedDate:      order.SalesAdminSignedDate,
		SalesAdminContractData:    order.SalesAdminContractData,
		ContractSigned:            order.ContractSigned,
		ContractSignedDate:        order.ContractSignedDate,
		ContractData:              order.ContractData,
		RequiresContractAmendment: order.RequiresContractAmendment,
		AmendmentDetails:          order.AmendmentDetails,
		AmendmentRequestedDate:    order.AmendmentRequestedDate,
		LastAmendmentDate:         order.LastAmendmentDate,
		CreatedAt:                 order.CreatedAt,
		UpdatedAt:                 order.UpdatedAt,
	}
	if order.TotalPrice.Valid {
		price := order.TotalPrice.Decimal
		resp.TotalPrice = &price
	}
	if order.AmendmentReason != domain.AmendmentReasonNone {
		reason := string(order.AmendmentReason)
		resp.AmendmentReason = &reason
	}
	return resp
}

type OrderEnvelope struct {
	TraceID string        `json:"traceId"`
	Order   OrderResponse `json:"order"`
}

type TermsResponse struct {
	TraceID           string        `json:"traceId"`
	Order             OrderResponse `json:"order"`
	RequiresAmendment bool          `json:"requiresAmendment"`
}

type SignatureResponse struct {
	TraceID     string        `json:"traceId"`
	Order       OrderResponse `json:"order"`
	IsAmendment bool          `json:"isAmendment"`
}

type OrderLogResponse struct {
	ID           string    `json:"id"`
	ActorID      *string   `json:"actorId"`
	ActorName    *string   `json:"actorName"`
	Action       string    `json:"action"`
	FieldChanged string    `json:"fieldChanged"`
	OldValue     *string   `json:"oldValue"`
	NewValue     *string   `json:"newValue"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
}

type OrderLogsResponse struct {
	TraceID string             `json:"traceId"`
	OrderID string             `json:"orderId"`
	Logs    []OrderLogResponse `json:"logs"`
}

func NewOrderLogsResponse(traceID, orderID string, logs []domain.OrderLog) OrderLogsResponse {
	resp := OrderLogsResponse{TraceID: traceID, OrderID: orderID, Logs: make([]OrderLogResponse, len(logs))}
	for i, l := range logs {
		resp.Logs[i] = OrderLogResponse{
			ID:           l.ID,
			ActorID:      l.ActorID,
			ActorName:    l.ActorName,
			Action:       l.Action,
			FieldChanged: l.FieldChanged,
			OldValue:     l.OldValue,
			NewValue:     l.NewValue,
			Description:  l.Description,
			CreatedAt:    l.CreatedAt,
		}
	}
	return resp
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	OrderID   string    `json:"orderId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
