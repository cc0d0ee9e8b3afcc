package router

import (
	"github.com/aqueduct/backend/internal/interfaces/http/handler"
)

// Handlers bundles the handlers served under the API prefix
type Handlers struct {
	System   *handler.SystemHandler
	Member   *handler.MemberHandler
	Property *handler.PropertyHandler
	Reading  *handler.ReadingHandler
	Tariff   *handler.TariffHandler
	Invoice  *handler.InvoiceHandler
	POS      *handler.POSHandler
}

// RegisterBillingRoutes registers every billing resource on r
func RegisterBillingRoutes(r *Router, h Handlers) *Router {
	system := NewDomainGroup("system", "").
		GET("/health", h.System.Health)

	members := NewDomainGroup("members", "/members").
		POST("", h.Member.Create).
		GET("", h.Member.List).
		POST("/import", h.Member.Import).
		GET("/:id", h.Member.GetByID).
		PUT("/:id", h.Member.Update)

	properties := NewDomainGroup("properties", "/properties").
		POST("", h.Property.Create).
		GET("", h.Property.List).
		GET("/:id", h.Property.GetByID).
		PUT("/:id", h.Property.Update).
		PUT("/:id/status", h.Property.ChangeStatus).
		GET("/:id/readings", h.Property.ReadingHistory).
		GET("/:id/readings/latest", h.Property.LatestReading).
		POST("/:id/readings", h.Property.RecordReading).
		GET("/:id/outstanding", h.Property.Outstanding).
		POST("/:id/payments", h.Property.ConfirmPayment)

	readings := NewDomainGroup("readings", "/readings").
		POST("/import", h.Reading.Import).
		GET("/template", h.Reading.Template).
		GET("/audit", h.Reading.Audit).
		GET("/:id/preview", h.Reading.Preview).
		POST("/:id/invoice", h.Reading.Issue).
		POST("/:id/pay", h.Reading.Pay)

	tariffs := NewDomainGroup("tariffs", "/tariffs").
		GET("/current", h.Tariff.Current).
		GET("", h.Tariff.List).
		POST("", h.Tariff.Configure)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("/generate", h.Invoice.Generate).
		GET("/preview", h.Invoice.Preview).
		GET("/:id", h.Invoice.GetByID).
		POST("/:id/pay", h.Invoice.Pay)

	pos := NewDomainGroup("pos", "/pos").
		GET("/search", h.POS.Search)

	receipts := NewDomainGroup("receipts", "/receipts").
		GET("/:batchId", h.POS.Receipt)

	return r.Register(system, members, properties, readings, tariffs, invoices, pos, receipts)
}
