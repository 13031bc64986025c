package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so callers can use errors.Is against the
// package-level sentinels.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithField returns a copy of the error annotated with the offending field.
func (e *DomainError) WithField(field string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Field: field}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes raised by the rental engine.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidState            = "INVALID_STATE"
	CodeSameStatus              = "SAME_STATUS"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodePeriodOverlap           = "PERIOD_OVERLAP"
	CodeContractItemNotFound    = "CONTRACT_ITEM_NOT_FOUND"
	CodeExclusionReasonRequired = "EXCLUSION_REASON_REQUIRED"
	CodeOverpayment             = "OVERPAYMENT"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeDuplicateNumber         = "DUPLICATE_NUMBER"
	CodeDuplicateRequest        = "DUPLICATE_REQUEST"
	CodeConcurrentModification  = "CONCURRENT_MODIFICATION"
)

// Common domain errors
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists    = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState     = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrSameStatus       = NewDomainError(CodeSameStatus, "New status must differ from the current status")
	ErrPeriodOverlap    = NewDomainError(CodePeriodOverlap, "Billing period overlaps an existing invoice for this contract")
	ErrDuplicateNumber  = NewDomainError(CodeDuplicateNumber, "Document number already in use")
	ErrDuplicateRequest = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key was already processed")

	ErrConcurrentModification = NewDomainError(CodeConcurrentModification, "Resource was modified by another request")
)
