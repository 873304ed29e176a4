package apierror

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound               ErrorCode = "NOT_FOUND"
	ErrConflict               ErrorCode = "CONFLICT"
	ErrBadRequest             ErrorCode = "BAD_REQUEST"
	ErrInvalidAmount          ErrorCode = "INVALID_AMOUNT"
	ErrSelfTransfer           ErrorCode = "SELF_TRANSFER"
	ErrAccountNotFound        ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrInsufficientBalance    ErrorCode = "INSUFFICIENT_BALANCE"
	ErrUnknownAttributionKind ErrorCode = "UNKNOWN_ATTRIBUTION_KIND"
	ErrStorageFault           ErrorCode = "STORAGE_FAULT"
	ErrInternalServer         ErrorCode = "INTERNAL_SERVER_ERROR"
)

// APIError is the structured error returned by every ledger operation. Code
// carries the taxonomy kind and Details any context a caller needs to build
// a user-facing message without re-deriving state.
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewInsufficientBalance builds the insufficient-balance error, reporting
// both the available and the required amount so callers can attempt a
// partial or alternate transfer.
func NewInsufficientBalance(available, required decimal.Decimal) APIError {
	return NewAPIError(
		ErrInsufficientBalance,
		fmt.Sprintf("Insufficient balance: available %s, required %s", available.String(), required.String()),
		map[string]interface{}{
			"available": available.String(),
			"required":  required.String(),
		},
	)
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound, ErrAccountNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrBadRequest, ErrInvalidAmount, ErrSelfTransfer, ErrUnknownAttributionKind:
			return http.StatusBadRequest
		case ErrInsufficientBalance:
			return http.StatusUnprocessableEntity
		case ErrStorageFault, ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
