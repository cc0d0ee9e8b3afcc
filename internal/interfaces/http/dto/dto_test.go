package dto

import (
	"net/http"
	"testing"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/stretchr/testify/assert"
)

func TestDomainCodesMapToStatuses(t *testing.T) {
	tests := []struct {
		domainCode string
		want       int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeAlreadyExists, http.StatusConflict},
		{shared.CodeConcurrencyConflict, http.StatusConflict},
		{invoicing.CodeAlreadyPaid, http.StatusConflict},
		{invoicing.CodeAlreadyInvoiced, http.StatusConflict},
		{metering.CodeNonMonotonicReading, http.StatusUnprocessableEntity},
		{tariff.CodeInvalidTariffConfig, http.StatusUnprocessableEntity},
		{tariff.CodeInvalidConsumption, http.StatusUnprocessableEntity},
		{invoicing.CodeNothingToPay, http.StatusUnprocessableEntity},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(NormalizeErrorCode(tt.domainCode)))
		})
	}
}

func TestUnknownCodes(t *testing.T) {
	assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 20)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestNewErrorResponses(t *testing.T) {
	resp := NewErrorResponse(ErrCodeNotFound, "Property not found", "req-1")
	assert.False(t, resp.Success)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	resp = NewValidationErrorResponse("Request validation failed", "req-2",
		[]ValidationDetail{{Field: "month", Message: "This field is required"}})
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}
