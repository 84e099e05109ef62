package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	invoiceformat "github.com/fitora/fitora/internal/invoice/format"
	"github.com/fitora/fitora/internal/tax"
	"github.com/fitora/fitora/pkg/db/pagination"
)

type CreateInvoiceBody struct {
	PaymentID      string  `json:"payment_id" binding:"required"`
	MemberID       string  `json:"member_id" binding:"required"`
	SubscriptionID string  `json:"subscription_id"`
	TotalAmount    float64 `json:"total_amount" binding:"required"`
	CreatedBy      string  `json:"created_by" binding:"required"`
}

type InvoiceResponse struct {
	ID             string  `json:"id"`
	InvoiceNumber  string  `json:"invoice_number"`
	PaymentID      string  `json:"payment_id"`
	MemberID       string  `json:"member_id"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
	IssueDate      string  `json:"issue_date"`
	Amount         float64 `json:"amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
	VATRate        float64 `json:"vat_rate"`
	Currency       string  `json:"currency"`
	BusinessName   string  `json:"business_name"`
	Status         string  `json:"status"`
	PDFURL         *string `json:"pdf_url,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type ListInvoicesResponse struct {
	Invoices []InvoiceResponse    `json:"invoices"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

type AmountWordsResponse struct {
	Amount float64 `json:"amount"`
	Words  string  `json:"words"`
}

func toInvoiceResponse(inv invoicedomain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		PaymentID:     inv.PaymentID.String(),
		MemberID:      inv.MemberID.String(),
		IssueDate:     inv.IssueDate.UTC().Format(time.RFC3339),
		Amount:        inv.Amount,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		VATRate:       inv.VATRate,
		Currency:      inv.Currency,
		BusinessName:  inv.BusinessName,
		Status:        string(inv.Status),
		PDFURL:        inv.PDFURL,
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339),
	}
	if inv.SubscriptionID != nil {
		sub := inv.SubscriptionID.String()
		resp.SubscriptionID = &sub
	}
	return resp
}

// CreateInvoice runs the full invoice workflow for a settled payment.
func (s *Server) CreateInvoice(c *gin.Context) {
	var body CreateInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_body", err.Error()))
		return
	}

	req, err := body.toRequest()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	inv, err := s.invoiceSvc.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		s.log.Warn("create invoice failed",
			zap.String("payment_id", body.PaymentID),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

func (b CreateInvoiceBody) toRequest() (invoicedomain.CreateInvoiceRequest, error) {
	paymentID, err := snowflake.ParseString(b.PaymentID)
	if err != nil {
		return invoicedomain.CreateInvoiceRequest{}, newValidationError("payment_id", "invalid_id", "payment_id is not a valid identifier")
	}
	memberID, err := snowflake.ParseString(b.MemberID)
	if err != nil {
		return invoicedomain.CreateInvoiceRequest{}, newValidationError("member_id", "invalid_id", "member_id is not a valid identifier")
	}
	createdBy, err := snowflake.ParseString(b.CreatedBy)
	if err != nil {
		return invoicedomain.CreateInvoiceRequest{}, newValidationError("created_by", "invalid_id", "created_by is not a valid identifier")
	}

	req := invoicedomain.CreateInvoiceRequest{
		PaymentID:   paymentID,
		MemberID:    memberID,
		TotalAmount: b.TotalAmount,
		CreatedBy:   createdBy,
	}
	if b.SubscriptionID != "" {
		subID, err := snowflake.ParseString(b.SubscriptionID)
		if err != nil {
			return invoicedomain.CreateInvoiceRequest{}, newValidationError("subscription_id", "invalid_id", "subscription_id is not a valid identifier")
		}
		req.SubscriptionID = &subID
	}
	return req, nil
}

// ListInvoices returns invoices filtered by member, status and creation window.
func (s *Server) ListInvoices(c *gin.Context) {
	var req invoicedomain.ListInvoiceRequest

	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_pagination", err.Error()))
		return
	}
	if raw := c.Query("member_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("member_id", "invalid_id", "member_id is not a valid identifier"))
			return
		}
		req.MemberID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := invoicedomain.InvoiceStatus(raw)
		req.Status = &status
	}
	if raw := c.Query("created_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("created_from", "invalid_time", "created_from must be an RFC3339 timestamp"))
			return
		}
		req.CreatedFrom = &t
	}
	if raw := c.Query("created_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("created_to", "invalid_time", "created_to must be an RFC3339 timestamp"))
			return
		}
		req.CreatedTo = &t
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := ListInvoicesResponse{
		Invoices: make([]InvoiceResponse, 0, len(resp.Invoices)),
		PageInfo: resp.PageInfo,
	}
	for _, inv := range resp.Invoices {
		out.Invoices = append(out.Invoices, toInvoiceResponse(inv))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// RetryInvoiceDocument re-runs PDF generation and upload for an invoice
// whose document phase previously failed.
func (s *Server) RetryInvoiceDocument(c *gin.Context) {
	inv, err := s.invoiceSvc.RetryDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Warn("retry invoice document failed",
			zap.String("invoice_id", c.Param("id")),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// PreviewAmountInWords spells out an amount the way it would appear on an
// invoice, without creating anything.
func (s *Server) PreviewAmountInWords(c *gin.Context) {
	raw := c.Query("amount")
	if raw == "" {
		AbortWithError(c, newValidationError("amount", "required", "amount is required"))
		return
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_number", "amount must be a number"))
		return
	}

	words, err := invoiceformat.AmountInWords(amount, s.invoicing.Get().CurrencyLabel)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, AmountWordsResponse{Amount: amount, Words: words})
}

// PreviewTaxBreakdown splits a tax-inclusive amount using the configured
// default VAT rate, or an explicit vat_rate query parameter.
func (s *Server) PreviewTaxBreakdown(c *gin.Context) {
	raw := c.Query("total_amount")
	if raw == "" {
		AbortWithError(c, newValidationError("total_amount", "required", "total_amount is required"))
		return
	}
	total, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		AbortWithError(c, newValidationError("total_amount", "invalid_number", "total_amount must be a number"))
		return
	}

	rate := s.invoicing.Get().DefaultVATRate
	if rawRate := c.Query("vat_rate"); rawRate != "" {
		rate, err = strconv.ParseFloat(rawRate, 64)
		if err != nil {
			AbortWithError(c, newValidationError("vat_rate", "invalid_number", "vat_rate must be a number"))
			return
		}
	}

	breakdown, err := tax.ComputeBreakdown(total, rate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
