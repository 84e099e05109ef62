package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fitora/fitora/internal/clock"
	"github.com/fitora/fitora/internal/config"
	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	"github.com/fitora/fitora/internal/invoice/render"
	"github.com/fitora/fitora/internal/lock"
	memberdomain "github.com/fitora/fitora/internal/member/domain"
	"github.com/fitora/fitora/internal/observability/metrics"
	"github.com/fitora/fitora/internal/providers/storage"
	sequencedomain "github.com/fitora/fitora/internal/sequence/domain"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
	"github.com/fitora/fitora/internal/tax"
	"github.com/fitora/fitora/pkg/db"
	"github.com/fitora/fitora/pkg/db/option"
	"github.com/fitora/fitora/pkg/db/pagination"
	"github.com/fitora/fitora/pkg/repository"
)

const defaultPageSize = 50

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Settings  settingsdomain.Service
	Members   memberdomain.Lookup
	Sequences sequencedomain.Store
	Renderer  render.Renderer
	Storage   storage.Provider
	Invoicing *config.InvoicingConfigHolder
	Locker    *lock.Locker     `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	clock     clock.Clock
	settings  settingsdomain.Service
	members   memberdomain.Lookup
	sequences sequencedomain.Store
	renderer  render.Renderer
	storage   storage.Provider
	invoicing *config.InvoicingConfigHolder
	locker    *lock.Locker
	metrics   *metrics.Metrics

	invoicerepo repository.Repository[invoicedomain.Invoice]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:     p.GenID,
		clock:     p.Clock,
		settings:  p.Settings,
		members:   p.Members,
		sequences: p.Sequences,
		renderer:  p.Renderer,
		storage:   p.Storage,
		invoicing: p.Invoicing,
		locker:    p.Locker,
		metrics:   p.Metrics,

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
	}
}

// CreateRecord creates and persists the invoice row for a payment: tax
// breakdown from the configured VAT rate, a fresh day-scoped number, and
// immutable snapshots of the business settings.
func (s *Service) CreateRecord(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	if err := req.Validate(); err != nil {
		return invoicedomain.Invoice{}, err
	}

	general, err := s.settings.General(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoiceSettings, err := s.settings.Invoice(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	breakdown, err := tax.ComputeBreakdown(req.TotalAmount, invoiceSettings.VATRate)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	number, err := s.NextInvoiceNumber(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	now := s.clock.Now()
	invoice := invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		InvoiceNumber:  number,
		PaymentID:      req.PaymentID,
		MemberID:       req.MemberID,
		SubscriptionID: req.SubscriptionID,
		IssueDate:      now,

		Amount:      breakdown.NetAmount,
		TaxAmount:   breakdown.TaxAmount,
		TotalAmount: breakdown.TotalAmount,
		VATRate:     breakdown.VATRate,
		Currency:    s.invoicing.Get().Currency,

		BusinessName:       general.BusinessName,
		BusinessStreet:     general.BusinessAddress.Street,
		BusinessCity:       general.BusinessAddress.City,
		BusinessPostalCode: general.BusinessAddress.PostalCode,
		BusinessCountry:    general.BusinessAddress.Country,
		BusinessTaxID:      general.TaxID,
		BusinessPhone:      general.Phone,
		BusinessEmail:      general.Email,
		BusinessLogoURL:    general.LogoURL,

		Status:    invoicedomain.InvoiceStatusIssued,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if notes := strings.TrimSpace(invoiceSettings.FooterNotes); notes != "" {
		invoice.FooterNotes = &notes
	}

	if err := s.insertInvoice(ctx, invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}

	if s.metrics != nil {
		s.metrics.InvoicesCreated.Inc()
	}
	s.log.Info("invoice record created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("payment_id", invoice.PaymentID.String()),
		zap.Float64("total_amount", invoice.TotalAmount))

	return invoice, nil
}

// insertInvoice persists the row, mapping the payment uniqueness violation
// onto the duplicate-specific error. The unique index is the authority; the
// pre-check only keeps the common path readable in logs.
func (s *Service) insertInvoice(ctx context.Context, invoice invoicedomain.Invoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.invoicerepo.WithTrx(tx).FindOne(ctx, &invoicedomain.Invoice{PaymentID: invoice.PaymentID})
		if err != nil {
			return err
		}
		if existing != nil {
			return invoicedomain.ErrDuplicatePayment
		}

		if err := s.invoicerepo.WithTrx(tx).Create(ctx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return invoicedomain.ErrDuplicatePayment
			}
			return err
		}
		return nil
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}

	item, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := &invoicedomain.Invoice{}
	if req.MemberID != nil {
		filter.MemberID = *req.MemberID
	}
	if req.Status != nil {
		filter.Status = *req.Status
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{Allow: map[string]bool{"created_at": true}}),
		// One extra row tells us whether a next page exists.
		option.WithLimit(pageSize + 1),
	}
	if req.CreatedFrom != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.GTE,
			Value:    *req.CreatedFrom,
		}))
	}
	if req.CreatedTo != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LTE,
			Value:    *req.CreatedTo,
		}))
	}
	if req.Pagination.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Pagination.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidPageToken
		}
		before, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidPageToken
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LT,
			Value:    before,
		}))
	}

	items, err := s.invoicerepo.Find(ctx, filter, options...)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *invoicedomain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoicedomain.ListInvoiceResponse{Invoices: invoices, PageInfo: pageInfo}, nil
}

func (s *Service) linkDocument(ctx context.Context, invoiceID snowflake.ID, url string) error {
	return s.invoicerepo.Update(ctx, invoiceID.String(), map[string]any{
		"pdf_url":    url,
		"updated_at": time.Now().UTC(),
	})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
