package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// InvalidStatusError is returned when a status is outside the order status enumeration.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Status)
}

func NewInvalidStatusError(status string) *InvalidStatusError {
	return &InvalidStatusError{Status: status}
}

func IsInvalidStatusError(err error) (*InvalidStatusError, bool) {
	var ise *InvalidStatusError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type NotCancellableError struct {
	Status string
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("order in status %s cannot be cancelled", e.Status)
}

func NewNotCancellableError(status string) *NotCancellableError {
	return &NotCancellableError{Status: status}
}

func IsNotCancellableError(err error) (*NotCancellableError, bool) {
	var nce *NotCancellableError
	if errors.As(err, &nce) {
		return nce, true
	}
	return nil, false
}

type StaffSignatureRequiredError struct {
	OrderID string
}

func (e *StaffSignatureRequiredError) Error() string {
	return "contract must be signed by staff before the customer can sign"
}

func NewStaffSignatureRequiredError(orderID string) *StaffSignatureRequiredError {
	return &StaffSignatureRequiredError{OrderID: orderID}
}

func IsStaffSignatureRequiredError(err error) (*StaffSignatureRequiredError, bool) {
	var sre *StaffSignatureRequiredError
	if errors.As(err, &sre) {
		return sre, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// PersistenceError reports that the store rejected the primary write of an operation.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{
		Message: message,
		Cause:   cause,
	}
}

func IsPersistenceError(err error) (*PersistenceError, bool) {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
