package handler

import (
	apptariff "github.com/aqueduct/backend/internal/application/tariff"
	"github.com/gin-gonic/gin"
)

// TariffHandler handles tariff administration endpoints
type TariffHandler struct {
	BaseHandler
	tariffService *apptariff.TariffService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffService *apptariff.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// Current handles GET /tariffs/current
func (h *TariffHandler) Current(c *gin.Context) {
	tariff, err := h.tariffService.Current(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tariff)
}

// List handles GET /tariffs
func (h *TariffHandler) List(c *gin.Context) {
	tariffs, err := h.tariffService.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tariffs)
}

// Configure handles POST /tariffs. The new configuration replaces the one
// in force.
func (h *TariffHandler) Configure(c *gin.Context) {
	var req apptariff.ConfigureTariffRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tariff, err := h.tariffService.Configure(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, tariff)
}
