package dto

import (
	"net/http"

	"github.com/rentflow/backend/internal/domain/shared"
)

// Error codes emitted by the HTTP layer. Domain codes pass through unchanged.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTenantRequired  = "TENANT_REQUIRED"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"

	ErrCodeNotFound                = shared.CodeNotFound
	ErrCodeAlreadyExists           = shared.CodeAlreadyExists
	ErrCodeInvalidInput            = shared.CodeInvalidInput
	ErrCodeInvalidState            = shared.CodeInvalidState
	ErrCodeSameStatus              = shared.CodeSameStatus
	ErrCodeInvalidTransition       = shared.CodeInvalidTransition
	ErrCodePeriodOverlap           = shared.CodePeriodOverlap
	ErrCodeContractItemNotFound    = shared.CodeContractItemNotFound
	ErrCodeExclusionReasonRequired = shared.CodeExclusionReasonRequired
	ErrCodeOverpayment             = shared.CodeOverpayment
	ErrCodeInvalidAmount           = shared.CodeInvalidAmount
	ErrCodeDuplicateNumber         = shared.CodeDuplicateNumber
	ErrCodeDuplicateRequest        = shared.CodeDuplicateRequest
	ErrCodeConcurrentModification  = shared.CodeConcurrentModification
)

var httpStatusByCode = map[string]int{
	ErrCodeValidation:              http.StatusBadRequest,
	ErrCodeBadRequest:              http.StatusBadRequest,
	ErrCodeInvalidInput:            http.StatusBadRequest,
	ErrCodeSameStatus:              http.StatusBadRequest,
	ErrCodePeriodOverlap:           http.StatusBadRequest,
	ErrCodeContractItemNotFound:    http.StatusBadRequest,
	ErrCodeExclusionReasonRequired: http.StatusBadRequest,
	ErrCodeOverpayment:             http.StatusBadRequest,
	ErrCodeInvalidAmount:           http.StatusBadRequest,
	ErrCodeTenantRequired:          http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInvalidToken: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	ErrCodeForbidden: http.StatusForbidden,
	ErrCodeNotFound:  http.StatusNotFound,

	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeDuplicateNumber:        http.StatusConflict,
	ErrCodeDuplicateRequest:       http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code. Unknown codes map
// to 500.
func GetHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
