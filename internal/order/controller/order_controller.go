package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"atelier/internal/domain"
	"atelier/internal/dto"
	apperrors "atelier/internal/errors"
	"atelier/internal/order/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxPrice = decimal.New(1, 10)

const (
	headerActorID   = "X-Actor-Id"
	headerActorName = "X-Actor-Name"
	headerActorRole = "X-Actor-Role"
)

type StatusUseCase interface {
	SetStatus(ctx context.Context, orderID, status string, actor *domain.Actor, trackingLink *string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, reason string, actor *domain.Actor) (*domain.Order, error)
}

type TermsUseCase interface {
	UpdatePrice(ctx context.Context, orderID string, price decimal.Decimal, actor *domain.Actor) (*usecase.TermsResult, error)
	UpdateDeadline(ctx context.Context, orderID string, deadline time.Time, actor *domain.Actor) (*usecase.TermsResult, error)
}

type ContractUseCase interface {
	SignAsStaff(ctx context.Context, orderID, signature string, snapshot json.RawMessage, actor *domain.Actor) (*usecase.SignatureResult, error)
	SignAsCustomer(ctx context.Context, orderID string, snapshot json.RawMessage, actor *domain.Actor) (*usecase.SignatureResult, error)
}

type QueryUseCase interface {
	GetOrder(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error)
	Logs(ctx context.Context, orderID string, actor *domain.Actor) ([]domain.OrderLog, error)
}

type OrderController struct {
	status   StatusUseCase
	terms    TermsUseCase
	contract ContractUseCase
	query    QueryUseCase
	logger   *zap.Logger
}

func NewOrderController(
	status StatusUseCase,
	terms TermsUseCase,
	contract ContractUseCase,
	query QueryUseCase,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		status:   status,
		terms:    terms,
		contract: contract,
		query:    query,
		logger:   logger,
	}
}

// Routes mounts the order endpoints under /{orderId}.
func (c *OrderController) Routes(r chi.Router) {
	r.Route("/{orderId}", func(r chi.Router) {
		r.Get("/", c.GetOrder)
		r.Get("/logs", c.GetLogs)
		r.Patch("/status", c.SetStatus)
		r.Post("/cancel", c.Cancel)
		r.Patch("/price", c.UpdatePrice)
		r.Patch("/deadline", c.UpdateDeadline)
		r.Post("/contract/staff-signature", c.SignAsStaff)
		r.Post("/contract/customer-signature", c.SignAsCustomer)
	})
}

// request carries what every handler derives from the incoming request.
type request struct {
	traceID string
	orderID string
	actor   *domain.Actor
	logger  *zap.Logger
}

// begin resolves trace id, order id and actor. It writes the error response
// and returns false when the request cannot proceed.
func (c *OrderController) begin(w http.ResponseWriter, r *http.Request) (request, bool) {
	traceID := uuid.New().String()
	orderID := chi.URLParam(r, "orderId")
	logger := c.logger.With(zap.String("traceId", traceID), zap.String("orderId", orderID))
	req := request{traceID: traceID, orderID: orderID, logger: logger}

	if _, err := uuid.Parse(orderID); err != nil {
		logger.Warn("invalid orderId in path", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a UUID",
		})
		return req, false
	}

	actor, err := actorFromHeaders(r)
	if err != nil {
		logger.Warn("rejected actor headers", zap.Error(err))
		c.handleUseCaseError(w, req, err)
		return req, false
	}
	req.actor = actor
	req.logger = logger.With(zap.String("actorId", actor.ID), zap.String("actorRole", string(actor.Role)))

	return req, true
}

func actorFromHeaders(r *http.Request) (*domain.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(headerActorID))
	role := domain.Role(strings.TrimSpace(r.Header.Get(headerActorRole)))

	if id == "" || role == "" {
		return nil, apperrors.NewForbiddenError("actor identity is required")
	}

	switch role {
	case domain.RoleSalesAdmin, domain.RoleOperationsAdmin, domain.RoleCustomer:
	default:
		return nil, apperrors.NewForbiddenError("unknown actor role " + string(role))
	}

	return &domain.Actor{
		ID:   id,
		Name: strings.TrimSpace(r.Header.Get(headerActorName)),
		Role: role,
	}, nil
}

func (c *OrderController) decode(w http.ResponseWriter, r *http.Request, req request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, req.traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	order, err := c.query.GetOrder(r.Context(), req.orderID, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderEnvelope{TraceID: req.traceID, Order: dto.NewOrderResponse(order)})
}

func (c *OrderController) GetLogs(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	logs, err := c.query.Logs(r.Context(), req.orderID, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderLogsResponse(req.traceID, req.orderID, logs))
}

func (c *OrderController) SetStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.SetStatusRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	if body.TrackingLink != nil && *body.TrackingLink != "" && !isHTTPURL(*body.TrackingLink) {
		c.writeValidationError(w, req.traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "trackingLink",
			Message: "trackingLink must be an http(s) URL",
		})
		return
	}

	order, err := c.status.SetStatus(r.Context(), req.orderID, strings.TrimSpace(body.Status), req.actor, body.TrackingLink)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderEnvelope{TraceID: req.traceID, Order: dto.NewOrderResponse(order)})
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	// The body is optional: an empty request cancels with the default reason.
	var body dto.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, req.traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.status.Cancel(r.Context(), req.orderID, strings.TrimSpace(body.Reason), req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderEnvelope{TraceID: req.traceID, Order: dto.NewOrderResponse(order)})
}

func (c *OrderController) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.UpdatePriceRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	price, err := parsePrice(body.Price)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	result, err := c.terms.UpdatePrice(r.Context(), req.orderID, price, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.TermsResponse{
		TraceID:           req.traceID,
		Order:             dto.NewOrderResponse(result.Order),
		RequiresAmendment: result.RequiresAmendment,
	})
}

func (c *OrderController) UpdateDeadline(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.UpdateDeadlineRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	deadline, err := parseDeadline(body.Deadline)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	result, err := c.terms.UpdateDeadline(r.Context(), req.orderID, deadline, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.TermsResponse{
		TraceID:           req.traceID,
		Order:             dto.NewOrderResponse(result.Order),
		RequiresAmendment: result.RequiresAmendment,
	})
}

func (c *OrderController) SignAsStaff(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.StaffSignatureRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	if validationErr := validateSnapshot(body.ContractData); validationErr != nil {
		c.handleUseCaseError(w, req, validationErr)
		return
	}

	result, err := c.contract.SignAsStaff(r.Context(), req.orderID, body.Signature, body.ContractData, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SignatureResponse{
		TraceID:     req.traceID,
		Order:       dto.NewOrderResponse(result.Order),
		IsAmendment: result.IsAmendment,
	})
}

func (c *OrderController) SignAsCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.CustomerSignatureRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	if validationErr := validateSnapshot(body.ContractData); validationErr != nil {
		c.handleUseCaseError(w, req, validationErr)
		return
	}

	result, err := c.contract.SignAsCustomer(r.Context(), req.orderID, body.ContractData, req.actor)
	if err != nil {
		c.handleUseCaseError(w, req, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SignatureResponse{
		TraceID:     req.traceID,
		Order:       dto.NewOrderResponse(result.Order),
		IsAmendment: result.IsAmendment,
	})
}

func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price is required",
		})
	}

	var price decimal.Decimal
	if err := price.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be a number",
		})
	}

	if price.IsNegative() {
		return decimal.Decimal{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be non-negative",
		})
	}

	// totalPrice is stored as DECIMAL(12,2)
	if !price.Equal(price.Truncate(2)) {
		return decimal.Decimal{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must have at most 2 decimal places",
		})
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be less than 10000000000",
		})
	}

	return price, nil
}

// parseDeadline accepts RFC 3339 timestamps and plain dates.
func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "deadline",
			Message: "deadline is required",
		})
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
		Field:   "deadline",
		Message: "deadline must be a date (YYYY-MM-DD) or an RFC 3339 timestamp",
	})
}

func validateSnapshot(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "contractData",
			Message: "contractData is required",
		})
	}
	if raw[0] != '{' {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "contractData",
			Message: "contractData must be an object",
		})
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, req request, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, req.traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, req, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsInvalidStatusError(err); ok {
		c.writeErrorResponse(w, req, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}

	if _, ok := apperrors.IsNotCancellableError(err); ok {
		c.writeErrorResponse(w, req, http.StatusConflict, "NOT_CANCELLABLE", err.Error())
		return
	}

	if _, ok := apperrors.IsStaffSignatureRequiredError(err); ok {
		c.writeErrorResponse(w, req, http.StatusConflict, "STAFF_SIGNATURE_REQUIRED", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, req, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if pe, ok := apperrors.IsPersistenceError(err); ok {
		req.logger.Error("persistence error", zap.Error(pe))
		c.writeErrorResponse(w, req, http.StatusInternalServerError, "PERSISTENCE_ERROR", pe.Message)
		return
	}

	req.logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, req, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *OrderController) writeErrorResponse(w http.ResponseWriter, req request, statusCode int, code, message string) {
	response := dto.ErrorResponse{
		TraceID:   req.traceID,
		Status:    statusCode,
		Message:   message,
		Code:      code,
		OrderID:   req.orderID,
		Timestamp: time.Now().UTC(),
	}

	c.writeJSON(w, statusCode, response)
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}

	c.writeJSON(w, http.StatusBadRequest, response)
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
