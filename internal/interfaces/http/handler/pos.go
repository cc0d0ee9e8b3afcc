package handler

import (
	"strings"

	apppayment "github.com/aqueduct/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
)

// POSHandler serves the payment counter: property lookup and receipts
type POSHandler struct {
	BaseHandler
	paymentService *apppayment.PaymentService
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(paymentService *apppayment.PaymentService) *POSHandler {
	return &POSHandler{paymentService: paymentService}
}

// Search handles GET /pos/search?q=
func (h *POSHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		h.BadRequest(c, "Search term is required")
		return
	}

	result, err := h.paymentService.Search(c.Request.Context(), term)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Receipt handles GET /receipts/:batchId
func (h *POSHandler) Receipt(c *gin.Context) {
	receipt, err := h.paymentService.Receipt(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}
