package handler

import (
	appmembership "github.com/aqueduct/backend/internal/application/membership"
	appmetering "github.com/aqueduct/backend/internal/application/metering"
	apppayment "github.com/aqueduct/backend/internal/application/payment"
	"github.com/aqueduct/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PropertyHandler handles property endpoints, including the readings,
// outstanding balance and counter payments of a single property
type PropertyHandler struct {
	BaseHandler
	propertyService *appmembership.PropertyService
	readingService  *appmetering.ReadingService
	paymentService  *apppayment.PaymentService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(
	propertyService *appmembership.PropertyService,
	readingService *appmetering.ReadingService,
	paymentService *apppayment.PaymentService,
) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		readingService:  readingService,
		paymentService:  paymentService,
	}
}

// propertyID parses the :id parameter and tags the request context with it
func (h *PropertyHandler) propertyID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	c.Request = c.Request.WithContext(logger.WithPropertyID(c.Request.Context(), id))
	return id, true
}

// Create handles POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req appmembership.CreatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, property)
}

// GetByID handles GET /properties/:id
func (h *PropertyHandler) GetByID(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	property, err := h.propertyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}

// List handles GET /properties. An account query parameter looks up a single
// property by its account number.
func (h *PropertyHandler) List(c *gin.Context) {
	if account := c.Query("account"); account != "" {
		property, err := h.propertyService.GetByAccountNumber(c.Request.Context(), account)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, property)
		return
	}

	var filter appmembership.PropertyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	properties, total, err := h.propertyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, properties, total, page, pageSize)
}

// Update handles PUT /properties/:id. Reassigning member_id transfers the
// property to another member.
func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	var req appmembership.UpdatePropertyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}

// ChangeStatus handles PUT /properties/:id/status
func (h *PropertyHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	var req appmembership.ChangePropertyStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, property)
}

// RecordReading handles POST /properties/:id/readings
func (h *PropertyHandler) RecordReading(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	var req appmetering.RecordReadingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reading, err := h.readingService.RecordReading(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reading)
}

// ReadingHistory handles GET /properties/:id/readings
func (h *PropertyHandler) ReadingHistory(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	readings, err := h.readingService.History(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, readings)
}

// LatestReading handles GET /properties/:id/readings/latest. A property
// without readings answers with null data.
func (h *PropertyHandler) LatestReading(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	reading, err := h.readingService.Latest(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reading)
}

// Outstanding handles GET /properties/:id/outstanding
func (h *PropertyHandler) Outstanding(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	outstanding, err := h.paymentService.Outstanding(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, outstanding)
}

// ConfirmPayment handles POST /properties/:id/payments. Every outstanding
// reading of the property is settled in one batch.
func (h *PropertyHandler) ConfirmPayment(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	var req apppayment.PaymentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.paymentService.ConfirmPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}
