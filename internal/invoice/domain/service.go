package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/fitora/fitora/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	PaymentID      snowflake.ID  `json:"payment_id"`
	MemberID       snowflake.ID  `json:"member_id"`
	SubscriptionID *snowflake.ID `json:"subscription_id,omitempty"`
	TotalAmount    float64       `json:"total_amount"`
	CreatedBy      snowflake.ID  `json:"created_by"`
}

func (r CreateInvoiceRequest) Validate() error {
	if r.PaymentID == 0 {
		return ErrMissingPayment
	}
	if r.MemberID == 0 {
		return ErrMissingMember
	}
	if r.TotalAmount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

type ListInvoiceRequest struct {
	MemberID    *snowflake.ID
	Status      *InvoiceStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	Pagination pagination.Pagination
}

type ListInvoiceResponse struct {
	Invoices []Invoice            `json:"invoices"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

type Service interface {
	// CreateRecord persists the invoice row only: tax breakdown, number,
	// snapshots. No document is produced.
	CreateRecord(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)

	// CreateInvoice runs the full workflow: record, document, upload, link.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)

	// RetryDocument re-runs document generation and upload for an existing
	// invoice, reusing its record.
	RetryDocument(ctx context.Context, id string) (Invoice, error)

	// NextInvoiceNumber reserves the next day-scoped invoice number.
	NextInvoiceNumber(ctx context.Context) (string, error)

	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
}
