package handler

import (
	"bytes"
	"net/http"

	appinvoicing "github.com/aqueduct/backend/internal/application/invoicing"
	appmetering "github.com/aqueduct/backend/internal/application/metering"
	apppayment "github.com/aqueduct/backend/internal/application/payment"
	"github.com/aqueduct/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const readingTemplateFilename = "plantilla_lecturas.csv"

// ReadingHandler handles endpoints addressed to readings: bulk import, the
// capture template, the consumption audit and per-reading billing
type ReadingHandler struct {
	BaseHandler
	readingService *appmetering.ReadingService
	invoiceService *appinvoicing.InvoiceService
	paymentService *apppayment.PaymentService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(
	readingService *appmetering.ReadingService,
	invoiceService *appinvoicing.InvoiceService,
	paymentService *apppayment.PaymentService,
) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// Import handles POST /readings/import. The multipart form carries the CSV
// in "file" and the billing period in "month" and "year".
func (h *ReadingHandler) Import(c *gin.Context) {
	var period appmetering.PeriodQuery
	if err := c.ShouldBind(&period); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	file, ok := h.uploadedFile(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.readingService.ImportReadings(c.Request.Context(), file, period.Month, period.Year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Template handles GET /readings/template
func (h *ReadingHandler) Template(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.readingService.ReadingTemplate(c.Request.Context(), &buf); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+readingTemplateFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Audit handles GET /readings/audit?month=&year=&threshold=
func (h *ReadingHandler) Audit(c *gin.Context) {
	var query appmetering.AuditQuery
	if !h.bindQuery(c, &query) {
		return
	}

	threshold := decimal.Zero
	if query.Threshold != "" {
		parsed, err := decimal.NewFromString(query.Threshold)
		if err != nil {
			h.BadRequest(c, "Invalid threshold")
			return
		}
		threshold = parsed
	}

	rows, err := h.readingService.AuditConsumption(c.Request.Context(), query.Month, query.Year, threshold)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rows)
}

// Preview handles GET /readings/:id/preview
func (h *ReadingHandler) Preview(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	line, err := h.invoiceService.PreviewReading(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, line)
}

// Issue handles POST /readings/:id/invoice. Issuing twice returns the
// invoice created the first time.
func (h *ReadingHandler) Issue(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Pay handles POST /readings/:id/pay
func (h *ReadingHandler) Pay(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req apppayment.PaymentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	invoice, err := h.paymentService.PayReading(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}
