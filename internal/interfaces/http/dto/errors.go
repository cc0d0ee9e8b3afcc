package dto

import (
	"net/http"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/domain/tariff"
)

// API error codes. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeInvalidConsumption   = "ERR_INVALID_CONSUMPTION"
	ErrCodeNonMonotonicReading  = "ERR_NON_MONOTONIC_READING"
	ErrCodeInvalidTariffConfig  = "ERR_INVALID_TARIFF_CONFIG"
	ErrCodeAlreadyPaid          = "ERR_ALREADY_PAID"
	ErrCodeAlreadyInvoiced      = "ERR_ALREADY_INVOICED"
	ErrCodeNothingToPay         = "ERR_NOTHING_TO_PAY"
	ErrCodeRequestTooLarge      = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited          = "ERR_RATE_LIMITED"
	ErrCodeUnsupportedMediaType = "ERR_UNSUPPORTED_MEDIA_TYPE"
)

// domainCodes maps domain error codes to API error codes
var domainCodes = map[string]string{
	shared.CodeNotFound:              ErrCodeNotFound,
	shared.CodeAlreadyExists:         ErrCodeAlreadyExists,
	shared.CodeValidation:            ErrCodeValidation,
	shared.CodeConcurrencyConflict:   ErrCodeConcurrencyConflict,
	shared.CodeInvalidState:          ErrCodeInvalidState,
	tariff.CodeInvalidConsumption:    ErrCodeInvalidConsumption,
	tariff.CodeInvalidTariffConfig:   ErrCodeInvalidTariffConfig,
	metering.CodeNonMonotonicReading: ErrCodeNonMonotonicReading,
	invoicing.CodeAlreadyPaid:        ErrCodeAlreadyPaid,
	invoicing.CodeAlreadyInvoiced:    ErrCodeAlreadyInvoiced,
	invoicing.CodeNothingToPay:       ErrCodeNothingToPay,
}

// httpStatus maps API error codes to HTTP status codes
var httpStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeAlreadyPaid:         http.StatusConflict,
	ErrCodeAlreadyInvoiced:     http.StatusConflict,

	// business rule violations -> 422
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInvalidConsumption:  http.StatusUnprocessableEntity,
	ErrCodeNonMonotonicReading: http.StatusUnprocessableEntity,
	ErrCodeInvalidTariffConfig: http.StatusUnprocessableEntity,
	ErrCodeNothingToPay:        http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:          http.StatusTooManyRequests,
	ErrCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
}

// GetHTTPStatus returns the HTTP status for an API error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API code. Unknown
// codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	return code
}
