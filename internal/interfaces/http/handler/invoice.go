package handler

import (
	appinvoicing "github.com/aqueduct/backend/internal/application/invoicing"
	appmetering "github.com/aqueduct/backend/internal/application/metering"
	apppayment "github.com/aqueduct/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
	paymentService *apppayment.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *appinvoicing.InvoiceService, paymentService *apppayment.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// Generate handles POST /invoices/generate. Failures of individual readings
// are reported in the result and do not fail the request.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req appinvoicing.GenerateInvoicesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoiceService.GenerateForPeriod(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Preview handles GET /invoices/preview?month=&year=
func (h *InvoiceHandler) Preview(c *gin.Context) {
	var query appmetering.PeriodQuery
	if !h.bindQuery(c, &query) {
		return
	}

	preview, err := h.invoiceService.PreviewPeriod(c.Request.Context(), query.Month, query.Year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Pay handles POST /invoices/:id/pay
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req apppayment.PaymentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	invoice, err := h.paymentService.PayInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}
