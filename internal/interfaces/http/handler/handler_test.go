package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appinvoicing "github.com/aqueduct/backend/internal/application/invoicing"
	appmembership "github.com/aqueduct/backend/internal/application/membership"
	appmetering "github.com/aqueduct/backend/internal/application/metering"
	apppayment "github.com/aqueduct/backend/internal/application/payment"
	apptariff "github.com/aqueduct/backend/internal/application/tariff"
	"github.com/aqueduct/backend/internal/infrastructure/lock"
	"github.com/aqueduct/backend/internal/infrastructure/persistence"
	"github.com/aqueduct/backend/internal/interfaces/http/dto"
	"github.com/aqueduct/backend/internal/interfaces/http/middleware"
	"github.com/aqueduct/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	locker := lock.NewInMemoryLocker()
	t.Cleanup(func() { _ = locker.Close() })

	now := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	txScope := persistence.NewGormTransactionScope(db)
	memberRepo := persistence.NewGormMemberRepository(db)
	propertyRepo := persistence.NewGormPropertyRepository(db)
	readingRepo := persistence.NewGormReadingRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	tariffRepo := persistence.NewGormTariffConfigRepository(db)

	tariffs := apptariff.NewTariffService(apptariff.TariffServiceConfig{TxScope: txScope, Repo: tariffRepo, Now: clock})
	members := appmembership.NewMemberService(appmembership.MemberServiceConfig{MemberRepo: memberRepo, PropertyRepo: propertyRepo})
	properties := appmembership.NewPropertyService(propertyRepo, memberRepo, nil)
	readings := appmetering.NewReadingService(appmetering.ReadingServiceConfig{
		TxScope:      txScope,
		ReadingRepo:  readingRepo,
		PropertyRepo: propertyRepo,
		MemberRepo:   memberRepo,
		Now:          clock,
	})
	invoices := appinvoicing.NewInvoiceService(appinvoicing.InvoiceServiceConfig{
		TxScope:      txScope,
		ReadingRepo:  readingRepo,
		InvoiceRepo:  invoiceRepo,
		PropertyRepo: propertyRepo,
		TariffRepo:   tariffRepo,
		Locker:       locker,
		Now:          clock,
	})
	payments := apppayment.NewPaymentService(apppayment.PaymentServiceConfig{
		TxScope:      txScope,
		ReadingRepo:  readingRepo,
		InvoiceRepo:  invoiceRepo,
		PropertyRepo: propertyRepo,
		MemberRepo:   memberRepo,
		TariffRepo:   tariffRepo,
		InvoicePayer: invoices,
		Locker:       locker,
		Now:          clock,
		Currency:     "PYG",
	})

	memberH := NewMemberHandler(members)
	propertyH := NewPropertyHandler(properties, readings, payments)
	readingH := NewReadingHandler(readings, invoices, payments)
	tariffH := NewTariffHandler(tariffs)
	invoiceH := NewInvoiceHandler(invoices, payments)
	posH := NewPOSHandler(payments)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.GET("/health", NewSystemHandler("aqueduct", "test", nil).Health)
	api.POST("/members", memberH.Create)
	api.GET("/members", memberH.List)
	api.POST("/members/import", memberH.Import)
	api.GET("/members/:id", memberH.GetByID)
	api.PUT("/members/:id", memberH.Update)
	api.POST("/properties", propertyH.Create)
	api.GET("/properties", propertyH.List)
	api.GET("/properties/:id", propertyH.GetByID)
	api.PUT("/properties/:id", propertyH.Update)
	api.PUT("/properties/:id/status", propertyH.ChangeStatus)
	api.GET("/properties/:id/readings", propertyH.ReadingHistory)
	api.GET("/properties/:id/readings/latest", propertyH.LatestReading)
	api.POST("/properties/:id/readings", propertyH.RecordReading)
	api.GET("/properties/:id/outstanding", propertyH.Outstanding)
	api.POST("/properties/:id/payments", propertyH.ConfirmPayment)
	api.POST("/readings/import", readingH.Import)
	api.GET("/readings/template", readingH.Template)
	api.GET("/readings/audit", readingH.Audit)
	api.GET("/readings/:id/preview", readingH.Preview)
	api.POST("/readings/:id/invoice", readingH.Issue)
	api.POST("/readings/:id/pay", readingH.Pay)
	api.GET("/tariffs/current", tariffH.Current)
	api.GET("/tariffs", tariffH.List)
	api.POST("/tariffs", tariffH.Configure)
	api.POST("/invoices/generate", invoiceH.Generate)
	api.GET("/invoices/preview", invoiceH.Preview)
	api.GET("/invoices/:id", invoiceH.GetByID)
	api.POST("/invoices/:id/pay", invoiceH.Pay)
	api.GET("/pos/search", posH.Search)
	api.GET("/receipts/:batchId", posH.Receipt)

	return &testServer{engine: engine}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, testutil.NewJSONRequest(t, method, path, body))
	return w
}

func (s *testServer) upload(t *testing.T, path, csv string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, testutil.NewCSVUploadRequest(t, path, csv, fields))
	return w
}

// seedProperty registers a member with one property and returns both ids
func (s *testServer) seedProperty(t *testing.T, name, nationalID, account string) (memberID, propertyID uuid.UUID) {
	t.Helper()
	var member appmembership.MemberResponse
	w := s.do(t, http.MethodPost, "/api/v1/members", map[string]any{"name": name, "national_id": nationalID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &member)

	var property appmembership.PropertyResponse
	w = s.do(t, http.MethodPost, "/api/v1/properties", map[string]any{
		"member_id":      member.ID,
		"account_number": account,
		"meter_serial":   "MS-" + account,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &property)
	return member.ID, property.ID
}

func (s *testServer) seedTariff(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/tariffs", map[string]any{
		"fixed_charge": "5000",
		"basic_limit":  "20",
		"basic_rate":   "1500",
		"excess_rate":  "3000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) recordReading(t *testing.T, propertyID uuid.UUID, month int, value string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/v1/properties/"+propertyID.String()+"/readings", map[string]any{
		"current_value": value,
		"month":         month,
		"year":          2025,
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	testutil.DecodeEnvelope(t, w, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "unconfigured", health.Database)
}

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("connection refused") }

func TestHealthDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/health", NewSystemHandler("aqueduct", "test", failingPinger{}).Health)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMemberEndpoints(t *testing.T) {
	s := newTestServer(t)
	memberID, _ := s.seedProperty(t, "Ana Benítez", "1.234.567", "A-001")

	t.Run("get includes properties", func(t *testing.T) {
		var member appmembership.MemberResponse
		w := s.do(t, http.MethodGet, "/api/v1/members/"+memberID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		testutil.DecodeEnvelope(t, w, &member)
		assert.Equal(t, "1234567", member.NationalID)
		require.Len(t, member.Properties, 1)
		assert.Equal(t, "A-001", member.Properties[0].AccountNumber)
	})

	t.Run("duplicate national id", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/members", map[string]any{"name": "Otra", "national_id": "1234567"})
		testutil.AssertAPIError(t, w, http.StatusConflict, dto.ErrCodeAlreadyExists)
	})

	t.Run("validation details", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/members", map[string]any{"name": "Sin cedula"})
		env := testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "national_id", env.Error.Details[0].Field)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/members/not-a-uuid", nil)
		testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/members/"+uuid.NewString(), nil)
		testutil.AssertAPIError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("update name and phone", func(t *testing.T) {
		var member appmembership.MemberResponse
		w := s.do(t, http.MethodPut, "/api/v1/members/"+memberID.String(), map[string]any{
			"name":  "Ana B. de Ruiz",
			"phone": "0981 555 123",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		testutil.DecodeEnvelope(t, w, &member)
		assert.Equal(t, "Ana B. de Ruiz", member.Name)
		assert.Equal(t, "0981555123", member.Phone)
		assert.Equal(t, "1234567", member.NationalID)

		w = s.do(t, http.MethodPut, "/api/v1/members/"+memberID.String(), map[string]any{"name": ""})
		testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

		w = s.do(t, http.MethodPut, "/api/v1/members/"+uuid.NewString(), map[string]any{"phone": "1"})
		testutil.AssertAPIError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("list with meta", func(t *testing.T) {
		var members []appmembership.MemberResponse
		w := s.do(t, http.MethodGet, "/api/v1/members?page=1&page_size=10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w, &members)
		assert.Len(t, members, 1)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		assert.Equal(t, 10, env.Meta.PageSize)
	})
}

func TestMemberImport(t *testing.T) {
	s := newTestServer(t)

	csv := "nombre,cedula,telefono\nAna,111,0981\nBeto,222,\n,333,\nCarla,111,\n"
	w := s.upload(t, "/api/v1/members/import", csv, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		SuccessCount int      `json:"success_count"`
		Errors       []string `json:"errors"`
	}
	testutil.DecodeEnvelope(t, w, &result)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Len(t, result.Errors, 2)

	w = s.do(t, http.MethodPost, "/api/v1/members/import", nil)
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestPropertyEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.seedProperty(t, "Ana", "111", "A-001")
	base := "/api/v1/properties/" + propertyID.String()

	t.Run("lookup by account", func(t *testing.T) {
		var property appmembership.PropertyResponse
		w := s.do(t, http.MethodGet, "/api/v1/properties?account=A-001", nil)
		require.Equal(t, http.StatusOK, w.Code)
		testutil.DecodeEnvelope(t, w, &property)
		assert.Equal(t, propertyID, property.ID)
		assert.Equal(t, "ACTIVE", property.Status)
	})

	t.Run("change status", func(t *testing.T) {
		var property appmembership.PropertyResponse
		w := s.do(t, http.MethodPut, base+"/status", map[string]any{"status": "SUSPENDED"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		testutil.DecodeEnvelope(t, w, &property)
		assert.Equal(t, "SUSPENDED", property.Status)

		w = s.do(t, http.MethodPut, base+"/status", map[string]any{"status": "GONE"})
		testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("update meter, sector, status and owner", func(t *testing.T) {
		var buyer appmembership.MemberResponse
		w := s.do(t, http.MethodPost, "/api/v1/members", map[string]any{"name": "Luis", "national_id": "222"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		testutil.DecodeEnvelope(t, w, &buyer)

		var property appmembership.PropertyResponse
		w = s.do(t, http.MethodPut, base, map[string]any{
			"member_id":    buyer.ID,
			"meter_serial": "SN-99",
			"sector":       "Sur",
			"status":       "ACTIVE",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		testutil.DecodeEnvelope(t, w, &property)
		assert.Equal(t, buyer.ID, property.MemberID)
		assert.Equal(t, "SN-99", property.MeterSerial)
		assert.Equal(t, "Sur", property.Sector)
		assert.Equal(t, "ACTIVE", property.Status)
		assert.Equal(t, "A-001", property.AccountNumber)

		w = s.do(t, http.MethodPut, base, map[string]any{"member_id": uuid.NewString()})
		testutil.AssertAPIError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

		w = s.do(t, http.MethodPut, base, map[string]any{"status": "GONE"})
		testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("latest reading is null before the first one", func(t *testing.T) {
		w := s.do(t, http.MethodGet, base+"/readings/latest", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w, nil)
		assert.True(t, env.Success)
		assert.True(t, len(env.Data) == 0 || string(env.Data) == "null")
	})

	t.Run("readings", func(t *testing.T) {
		w := s.recordReading(t, propertyID, 3, "15")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.recordReading(t, propertyID, 4, "10")
		testutil.AssertAPIError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeNonMonotonicReading)

		w = s.recordReading(t, propertyID, 4, "-1")
		testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

		w = s.recordReading(t, propertyID, 4, "20.00001")
		env := testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "current_value", env.Error.Details[0].Field)

		var history []appmetering.ReadingResponse
		w = s.do(t, http.MethodGet, base+"/readings", nil)
		require.Equal(t, http.StatusOK, w.Code)
		testutil.DecodeEnvelope(t, w, &history)
		require.Len(t, history, 1)
		assert.Equal(t, "15", history[0].Consumption.String())

		var latest appmetering.ReadingResponse
		w = s.do(t, http.MethodGet, base+"/readings/latest", nil)
		require.Equal(t, http.StatusOK, w.Code)
		testutil.DecodeEnvelope(t, w, &latest)
		assert.Equal(t, int64(1), latest.Sequence)
	})

	t.Run("unknown property", func(t *testing.T) {
		w := s.recordReading(t, uuid.New(), 3, "15")
		testutil.AssertAPIError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}

func TestCounterPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedTariff(t)
	_, propertyID := s.seedProperty(t, "Ana Benítez", "111", "A-001")
	base := "/api/v1/properties/" + propertyID.String()

	require.Equal(t, http.StatusCreated, s.recordReading(t, propertyID, 3, "15").Code)
	require.Equal(t, http.StatusCreated, s.recordReading(t, propertyID, 4, "45").Code)

	var outstanding apppayment.OutstandingResponse
	w := s.do(t, http.MethodGet, base+"/outstanding", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &outstanding)
	require.Len(t, outstanding.Lines, 2)
	assert.Equal(t, 4, outstanding.Lines[0].Month)
	// 27500 for 15 m3, 65000 for 30 m3
	assert.Equal(t, "92500", outstanding.TotalDebt.String())

	var search apppayment.SearchResult
	w = s.do(t, http.MethodGet, "/api/v1/pos/search?q=benitez", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &search)
	assert.Equal(t, propertyID, search.PropertyID)
	assert.Equal(t, "92500", search.Outstanding.TotalDebt.String())

	var result apppayment.PaymentResult
	w = s.do(t, http.MethodPost, base+"/payments", map[string]any{"payment_method": "CARD"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &result)
	assert.Len(t, result.InvoiceIDs, 2)
	assert.Equal(t, "92500", result.TotalPaid.String())

	var receipt apppayment.ReceiptResponse
	w = s.do(t, http.MethodGet, "/api/v1/receipts/"+result.BatchID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &receipt)
	assert.Equal(t, "A-001", receipt.AccountNumber)
	assert.Equal(t, "Ana Benítez", receipt.MemberName)
	assert.Equal(t, "PYG", receipt.Currency)
	assert.Len(t, receipt.Invoices, 2)

	w = s.do(t, http.MethodPost, base+"/payments", nil)
	testutil.AssertAPIError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeNothingToPay)

	w = s.do(t, http.MethodGet, "/api/v1/receipts/UNKNOWN", nil)
	testutil.AssertAPIError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

	w = s.do(t, http.MethodGet, "/api/v1/pos/search", nil)
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, propertyID := s.seedProperty(t, "Ana", "111", "A-001")

	var reading appmetering.ReadingResponse
	w := s.recordReading(t, propertyID, 3, "30")
	require.Equal(t, http.StatusCreated, w.Code)
	testutil.DecodeEnvelope(t, w, &reading)
	readingPath := "/api/v1/readings/" + reading.ID.String()

	w = s.do(t, http.MethodPost, readingPath+"/invoice", nil)
	testutil.AssertAPIError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidTariffConfig)

	s.seedTariff(t)

	var line appinvoicing.PreviewLine
	w = s.do(t, http.MethodGet, readingPath+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &line)
	assert.Equal(t, "65000", line.Breakdown.Total.String())

	var preview appinvoicing.PeriodPreview
	w = s.do(t, http.MethodGet, "/api/v1/invoices/preview?month=3&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &preview)
	assert.Len(t, preview.Lines, 1)
	assert.Equal(t, "65000", preview.ExpectedTotal.String())

	w = s.do(t, http.MethodGet, "/api/v1/invoices/preview?month=13&year=2025", nil)
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	var generated appinvoicing.GenerationResult
	w = s.do(t, http.MethodPost, "/api/v1/invoices/generate", map[string]any{"month": 3, "year": 2025})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &generated)
	assert.Equal(t, 1, generated.IssuedCount)

	var invoice appinvoicing.InvoiceResponse
	w = s.do(t, http.MethodPost, readingPath+"/invoice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &invoice)
	assert.Equal(t, "FAC-2025-A-001-1", invoice.Number)
	assert.Equal(t, "PENDING", invoice.Status)

	w = s.do(t, http.MethodGet, "/api/v1/invoices/"+invoice.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var paid appinvoicing.InvoiceResponse
	w = s.do(t, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/pay", map[string]any{"payment_method": "BANK_TRANSFER"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &paid)
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, "BANK_TRANSFER", paid.PaymentMethod)

	w = s.do(t, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/pay", nil)
	testutil.AssertAPIError(t, w, http.StatusConflict, dto.ErrCodeAlreadyPaid)

	w = s.do(t, http.MethodPost, readingPath+"/pay", nil)
	testutil.AssertAPIError(t, w, http.StatusConflict, dto.ErrCodeAlreadyPaid)
}

func TestReadingPayCreatesReceiptInvoice(t *testing.T) {
	s := newTestServer(t)
	s.seedTariff(t)
	_, propertyID := s.seedProperty(t, "Ana", "111", "A-001")

	var reading appmetering.ReadingResponse
	w := s.recordReading(t, propertyID, 3, "10")
	require.Equal(t, http.StatusCreated, w.Code)
	testutil.DecodeEnvelope(t, w, &reading)

	var invoice appinvoicing.InvoiceResponse
	w = s.do(t, http.MethodPost, "/api/v1/readings/"+reading.ID.String()+"/pay", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &invoice)
	assert.True(t, strings.HasPrefix(invoice.Number, "REC-"))
	assert.Equal(t, "PAID", invoice.Status)
	assert.Equal(t, "CASH", invoice.PaymentMethod)
}

func TestTariffEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/tariffs/current", nil)
	testutil.AssertAPIError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInvalidTariffConfig)

	w = s.do(t, http.MethodPost, "/api/v1/tariffs", map[string]any{
		"fixed_charge": "-1",
		"basic_limit":  "20",
		"basic_rate":   "1500",
		"excess_rate":  "3000",
	})
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = s.do(t, http.MethodPost, "/api/v1/tariffs", map[string]any{
		"fixed_charge": "5000",
		"basic_limit":  "20",
		"basic_rate":   "1500.12345",
		"excess_rate":  "3000",
	})
	env := testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "basic_rate", env.Error.Details[0].Field)
	assert.Equal(t, "Must have at most 4 decimal places", env.Error.Details[0].Message)

	s.seedTariff(t)

	var current apptariff.TariffResponse
	w = s.do(t, http.MethodGet, "/api/v1/tariffs/current", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &current)
	assert.Equal(t, "5000", current.FixedCharge.String())
	assert.True(t, current.Active)

	s.seedTariff(t)
	var all []apptariff.TariffResponse
	w = s.do(t, http.MethodGet, "/api/v1/tariffs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeEnvelope(t, w, &all)
	assert.Len(t, all, 2)
}

func TestReadingImportTemplateAndAudit(t *testing.T) {
	s := newTestServer(t)
	_, a := s.seedProperty(t, "Ana", "111", "A-001")
	s.seedProperty(t, "Beto", "222", "A-002")

	w := s.do(t, http.MethodGet, "/api/v1/readings/template", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "plantilla_lecturas.csv")
	assert.Contains(t, w.Body.String(), "numero_cuenta")
	assert.Contains(t, w.Body.String(), "A-002")

	csv := "numero_cuenta,lectura_actual\nA-001,10\nA-002,\nZ-999,5\n"
	w = s.upload(t, "/api/v1/readings/import", csv, map[string]string{"month": "1", "year": "2025"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		SuccessCount int      `json:"success_count"`
		Errors       []string `json:"errors"`
	}
	testutil.DecodeEnvelope(t, w, &result)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Z-999")

	w = s.upload(t, "/api/v1/readings/import", csv, map[string]string{"month": "0", "year": "2025"})
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	require.Equal(t, http.StatusCreated, s.recordReading(t, a, 2, "20").Code)
	require.Equal(t, http.StatusCreated, s.recordReading(t, a, 3, "60").Code)

	var rows []appmetering.AuditRow
	w = s.do(t, http.MethodGet, "/api/v1/readings/audit?month=3&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-001", rows[0].AccountNumber)
	assert.True(t, rows[0].Alert)

	w = s.do(t, http.MethodGet, "/api/v1/readings/audit?month=3&year=2025&threshold=abc", nil)
	testutil.AssertAPIError(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}
