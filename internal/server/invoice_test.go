package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fitora/fitora/internal/config"
	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
)

type fakeInvoiceService struct {
	invoice invoicedomain.Invoice
	err     error

	createCalls int
	retryCalls  int
	lastList    invoicedomain.ListInvoiceRequest
}

func (f *fakeInvoiceService) CreateRecord(context.Context, invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	return f.invoice, f.err
}

func (f *fakeInvoiceService) CreateInvoice(_ context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	f.createCalls++
	if f.err != nil {
		return invoicedomain.Invoice{}, f.err
	}
	out := f.invoice
	out.PaymentID = req.PaymentID
	out.MemberID = req.MemberID
	return out, nil
}

func (f *fakeInvoiceService) RetryDocument(context.Context, string) (invoicedomain.Invoice, error) {
	f.retryCalls++
	return f.invoice, f.err
}

func (f *fakeInvoiceService) NextInvoiceNumber(context.Context) (string, error) {
	return f.invoice.InvoiceNumber, f.err
}

func (f *fakeInvoiceService) GetByID(context.Context, string) (invoicedomain.Invoice, error) {
	return f.invoice, f.err
}

func (f *fakeInvoiceService) List(_ context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	f.lastList = req
	if f.err != nil {
		return invoicedomain.ListInvoiceResponse{}, f.err
	}
	return invoicedomain.ListInvoiceResponse{Invoices: []invoicedomain.Invoice{f.invoice}}, nil
}

func setupTestServer(t *testing.T, svc invoicedomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	s := NewServer(ServerParam{
		Engine:     engine,
		Log:        zap.NewNop(),
		Invoicing:  config.NewStaticInvoicingConfigHolder(config.DefaultInvoicingConfig()),
		InvoiceSvc: svc,
	})
	s.RegisterAPIRoutes()
	return engine
}

func sampleInvoice() invoicedomain.Invoice {
	url := "memory://25082026-1.pdf"
	return invoicedomain.Invoice{
		ID:            snowflake.ID(101),
		InvoiceNumber: "25082026-1",
		PaymentID:     snowflake.ID(201),
		MemberID:      snowflake.ID(301),
		IssueDate:     time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC),
		Amount:        6027.78,
		TaxAmount:     1205.55,
		TotalAmount:   7233.33,
		VATRate:       20,
		Currency:      "MAD",
		BusinessName:  "Atlas Fitness Club",
		Status:        invoicedomain.InvoiceStatusIssued,
		PDFURL:        &url,
	}
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	svc := &fakeInvoiceService{invoice: sampleInvoice()}
	engine := setupTestServer(t, svc)

	body, _ := json.Marshal(map[string]any{
		"payment_id":   "201",
		"member_id":    "301",
		"total_amount": 7233.33,
		"created_by":   "401",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, svc.createCalls)

	var resp InvoiceResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "25082026-1", resp.InvoiceNumber)
	assert.Equal(t, 7233.33, resp.TotalAmount)
	if assert.NotNil(t, resp.PDFURL) {
		assert.Equal(t, "memory://25082026-1.pdf", *resp.PDFURL)
	}
}

func TestCreateInvoiceEndpointRejectsBadIDs(t *testing.T) {
	svc := &fakeInvoiceService{invoice: sampleInvoice()}
	engine := setupTestServer(t, svc)

	body, _ := json.Marshal(map[string]any{
		"payment_id":   "not-a-number",
		"member_id":    "301",
		"total_amount": 100,
		"created_by":   "401",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.createCalls)
}

func TestCreateInvoiceEndpointDuplicateConflict(t *testing.T) {
	svc := &fakeInvoiceService{err: invoicedomain.ErrDuplicatePayment}
	engine := setupTestServer(t, svc)

	body, _ := json.Marshal(map[string]any{
		"payment_id":   "201",
		"member_id":    "301",
		"total_amount": 100,
		"created_by":   "401",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invoice already exists for this payment")
}

func TestGetInvoiceNotFound(t *testing.T) {
	svc := &fakeInvoiceService{err: invoicedomain.ErrInvoiceNotFound}
	engine := setupTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/101", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInvoicesFilters(t *testing.T) {
	svc := &fakeInvoiceService{invoice: sampleInvoice()}
	engine := setupTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/invoices?member_id=301&status=ISSUED&created_from=2026-08-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, svc.lastList.MemberID) {
		assert.Equal(t, snowflake.ID(301), *svc.lastList.MemberID)
	}
	if assert.NotNil(t, svc.lastList.Status) {
		assert.Equal(t, invoicedomain.InvoiceStatusIssued, *svc.lastList.Status)
	}
	assert.NotNil(t, svc.lastList.CreatedFrom)
	assert.Nil(t, svc.lastList.CreatedTo)
}

func TestRetryDocumentEndpoint(t *testing.T) {
	svc := &fakeInvoiceService{invoice: sampleInvoice()}
	engine := setupTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/101/document", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.retryCalls)
}

func TestPreviewAmountInWords(t *testing.T) {
	engine := setupTestServer(t, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/preview/amount-words?amount=71", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AmountWordsResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Soixante et Onze Dirhams (TTC)", resp.Words)
}

func TestPreviewAmountInWordsTooLarge(t *testing.T) {
	engine := setupTestServer(t, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/preview/amount-words?amount=2000000", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amount exceeds maximum supported value")
}

func TestPreviewTaxBreakdown(t *testing.T) {
	engine := setupTestServer(t, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/preview/tax?total_amount=7233.33", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]float64
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6027.78, resp["amount"])
	assert.Equal(t, 1205.55, resp["tax_amount"])
	assert.Equal(t, 20.0, resp["vat_rate"])

	// Explicit rate overrides the configured default.
	req = httptest.NewRequest(http.MethodGet, "/api/invoices/preview/tax?total_amount=100&vat_rate=0", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp["amount"])
	assert.Equal(t, 0.0, resp["tax_amount"])
}

func TestPreviewTaxBreakdownInvalidRate(t *testing.T) {
	engine := setupTestServer(t, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/preview/tax?total_amount=100&vat_rate=150", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VAT rate must be between 0 and 100")
}
