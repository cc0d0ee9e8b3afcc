package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aqueduct/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.basePath())
	assert.Empty(t, r.Routes())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.basePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()
	assert.Equal(t, []string{"GET /api/v1/test/ping"}, r.Routes())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("members", "/members")
		assert.Equal(t, "members", g.Name())
		assert.Equal(t, "/members", g.Prefix())
	})

	t.Run("methods and middleware", func(t *testing.T) {
		engine := gin.New()
		var seen []string
		g := NewDomainGroup("test", "/test").
			Use(func(c *gin.Context) {
				seen = append(seen, c.Request.Method)
				c.Next()
			}).
			GET("/item", func(c *gin.Context) { c.Status(http.StatusOK) }).
			POST("/item", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			PUT("/item", func(c *gin.Context) { c.Status(http.StatusAccepted) })
		g.mount(engine.Group("/api/v1"))

		for method, status := range map[string]int{
			http.MethodGet:  http.StatusOK,
			http.MethodPost: http.StatusCreated,
			http.MethodPut:  http.StatusAccepted,
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/test/item", nil))
			assert.Equal(t, status, w.Code, method)
		}
		assert.Len(t, seen, 3)
	})
}

func TestRegisterBillingRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r = RegisterBillingRoutes(r, Handlers{
		System:   handler.NewSystemHandler("aqueduct", "test", nil),
		Member:   handler.NewMemberHandler(nil),
		Property: handler.NewPropertyHandler(nil, nil, nil),
		Reading:  handler.NewReadingHandler(nil, nil, nil),
		Tariff:   handler.NewTariffHandler(nil),
		Invoice:  handler.NewInvoiceHandler(nil, nil),
		POS:      handler.NewPOSHandler(nil),
	})
	r.Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/health",
		"POST /api/v1/members",
		"GET /api/v1/members",
		"GET /api/v1/members/:id",
		"PUT /api/v1/members/:id",
		"POST /api/v1/members/import",
		"POST /api/v1/properties",
		"GET /api/v1/properties",
		"GET /api/v1/properties/:id",
		"PUT /api/v1/properties/:id",
		"PUT /api/v1/properties/:id/status",
		"GET /api/v1/properties/:id/readings",
		"GET /api/v1/properties/:id/readings/latest",
		"POST /api/v1/properties/:id/readings",
		"GET /api/v1/properties/:id/outstanding",
		"POST /api/v1/properties/:id/payments",
		"POST /api/v1/readings/import",
		"GET /api/v1/readings/template",
		"GET /api/v1/readings/audit",
		"GET /api/v1/readings/:id/preview",
		"POST /api/v1/readings/:id/invoice",
		"POST /api/v1/readings/:id/pay",
		"GET /api/v1/tariffs/current",
		"GET /api/v1/tariffs",
		"POST /api/v1/tariffs",
		"POST /api/v1/invoices/generate",
		"GET /api/v1/invoices/preview",
		"GET /api/v1/invoices/:id",
		"POST /api/v1/invoices/:id/pay",
		"GET /api/v1/pos/search",
		"GET /api/v1/receipts/:batchId",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	require.Len(t, engine.Routes(), len(expected))
	assert.ElementsMatch(t, expected, r.Routes())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
