package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fitora/fitora/internal/clock"
	"github.com/fitora/fitora/internal/config"
	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	"github.com/fitora/fitora/internal/invoice/render"
	memberdomain "github.com/fitora/fitora/internal/member/domain"
	"github.com/fitora/fitora/internal/providers/storage"
	"github.com/fitora/fitora/internal/sequence"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
	"github.com/fitora/fitora/pkg/db/pagination"
)

type settingsStub struct {
	general    settingsdomain.GeneralSettings
	generalErr error
	invoice    settingsdomain.InvoiceSettings
	invoiceErr error
}

func (s *settingsStub) General(context.Context) (settingsdomain.GeneralSettings, error) {
	return s.general, s.generalErr
}

func (s *settingsStub) Invoice(context.Context) (settingsdomain.InvoiceSettings, error) {
	return s.invoice, s.invoiceErr
}

type memberStub struct {
	members map[snowflake.ID]memberdomain.Member
}

func (m *memberStub) GetMember(_ context.Context, id snowflake.ID) (memberdomain.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return memberdomain.Member{}, memberdomain.ErrNotFound
	}
	return member, nil
}

type rendererStub struct {
	document []byte
	err      error
	calls    int
}

func (r *rendererStub) Render(context.Context, render.DocumentInput) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.document, nil
}

type failingStorage struct {
	err error
}

func (f *failingStorage) Upload(context.Context, string, string, []byte) (string, error) {
	return "", f.err
}

type fixture struct {
	svc      invoicedomain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	settings *settingsStub
	members  *memberStub
	renderer *rendererStub
	storage  *storage.Memory
}

func defaultGeneralSettings() settingsdomain.GeneralSettings {
	return settingsdomain.GeneralSettings{
		BusinessName: "Atlas Fitness Club",
		BusinessAddress: settingsdomain.BusinessAddress{
			Street:     "12 Rue des Orangers",
			City:       "Casablanca",
			PostalCode: "20250",
			Country:    "Maroc",
		},
		TaxID: "IF-4455667",
		Email: "contact@atlasfitness.ma",
	}
}

func setupInvoiceService(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = conn.AutoMigrate(&invoicedomain.Invoice{})
	assert.NoError(t, err)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC))

	settings := &settingsStub{
		general: defaultGeneralSettings(),
		invoice: settingsdomain.InvoiceSettings{VATRate: 20, AutoGenerate: true},
	}
	members := &memberStub{members: make(map[snowflake.ID]memberdomain.Member)}
	renderer := &rendererStub{document: []byte("%PDF-1.7 test")}
	store := storage.NewMemory()

	svc := NewService(ServiceParam{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fc,
		Settings:  settings,
		Members:   members,
		Sequences: sequence.NewMemory(),
		Renderer:  renderer,
		Storage:   store,
		Invoicing: config.NewStaticInvoicingConfigHolder(config.DefaultInvoicingConfig()),
	})

	return &fixture{
		svc:      svc,
		db:       conn,
		node:     node,
		clock:    fc,
		settings: settings,
		members:  members,
		renderer: renderer,
		storage:  store,
	}
}

func (f *fixture) newRequest() invoicedomain.CreateInvoiceRequest {
	memberID := f.node.Generate()
	f.members.members[memberID] = memberdomain.Member{
		ID:        memberID,
		FirstName: "Yassine",
		LastName:  "Benali",
	}
	return invoicedomain.CreateInvoiceRequest{
		PaymentID:   f.node.Generate(),
		MemberID:    memberID,
		TotalAmount: 7233.33,
		CreatedBy:   f.node.Generate(),
	}
}

func TestCreateRecord(t *testing.T) {
	f := setupInvoiceService(t)

	invoice, err := f.svc.CreateRecord(context.Background(), f.newRequest())
	assert.NoError(t, err)

	assert.Equal(t, "25082026-1", invoice.InvoiceNumber)
	assert.Equal(t, 6027.78, invoice.Amount)
	assert.Equal(t, 1205.55, invoice.TaxAmount)
	assert.Equal(t, 7233.33, invoice.TotalAmount)
	assert.Equal(t, 20.0, invoice.VATRate)
	assert.Equal(t, "MAD", invoice.Currency)
	assert.Equal(t, invoicedomain.InvoiceStatusIssued, invoice.Status)
	assert.Equal(t, "Atlas Fitness Club", invoice.BusinessName)
	assert.Equal(t, "Casablanca", invoice.BusinessCity)
	assert.Nil(t, invoice.PDFURL)

	var count int64
	assert.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRecordSequenceWithinDay(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	first, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)
	assert.Equal(t, "25082026-1", first.InvoiceNumber)

	second, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)
	assert.Equal(t, "25082026-2", second.InvoiceNumber)

	// Midnight resets the visible counter.
	f.clock.Advance(24 * time.Hour)
	third, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)
	assert.Equal(t, "26082026-1", third.InvoiceNumber)
}

func TestCreateRecordDuplicatePayment(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()
	req := f.newRequest()

	_, err := f.svc.CreateRecord(ctx, req)
	assert.NoError(t, err)

	_, err = f.svc.CreateRecord(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrDuplicatePayment)
	assert.EqualError(t, err, "Invoice already exists for this payment")

	var count int64
	assert.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Settings edits after creation must never alter the snapshot already
// written to the invoice.
func TestCreateRecordSnapshotImmutable(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	invoice, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)

	f.settings.general.BusinessName = "Renamed Club"
	f.settings.general.BusinessAddress.City = "Rabat"

	stored, err := f.svc.GetByID(ctx, invoice.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "Atlas Fitness Club", stored.BusinessName)
	assert.Equal(t, "Casablanca", stored.BusinessCity)
}

func TestCreateRecordMissingGeneralSettings(t *testing.T) {
	f := setupInvoiceService(t)
	f.settings.generalErr = settingsdomain.ErrGeneralSettingsMissing

	_, err := f.svc.CreateRecord(context.Background(), f.newRequest())
	assert.ErrorIs(t, err, settingsdomain.ErrGeneralSettingsMissing)

	var count int64
	assert.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRecordFooterNotes(t *testing.T) {
	f := setupInvoiceService(t)
	f.settings.invoice.FooterNotes = "Merci de votre confiance."

	invoice, err := f.svc.CreateRecord(context.Background(), f.newRequest())
	assert.NoError(t, err)
	if assert.NotNil(t, invoice.FooterNotes) {
		assert.Equal(t, "Merci de votre confiance.", *invoice.FooterNotes)
	}
}

func TestCreateRecordValidation(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	req := f.newRequest()
	req.PaymentID = 0
	_, err := f.svc.CreateRecord(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrMissingPayment)

	req = f.newRequest()
	req.MemberID = 0
	_, err = f.svc.CreateRecord(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrMissingMember)

	req = f.newRequest()
	req.TotalAmount = 0
	_, err = f.svc.CreateRecord(ctx, req)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidAmount)
}

func TestNextInvoiceNumberWrapsStoreFailure(t *testing.T) {
	f := setupInvoiceService(t)

	svc := f.svc.(*Service)
	svc.sequences = &failingSequenceStore{err: errors.New("connection refused")}

	_, err := svc.NextInvoiceNumber(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to generate invoice number:")
}

func TestNextInvoiceNumberRejectsNonPositiveSequence(t *testing.T) {
	f := setupInvoiceService(t)

	svc := f.svc.(*Service)
	svc.sequences = &failingSequenceStore{value: 0}

	_, err := svc.NextInvoiceNumber(context.Background())
	assert.ErrorIs(t, err, invoicedomain.ErrNullInvoiceNumber)
	assert.EqualError(t, err, "RPC returned null invoice number")
}

type failingSequenceStore struct {
	value int64
	err   error
}

func (s *failingSequenceStore) Next(context.Context, string) (int64, error) {
	return s.value, s.err
}

func TestGetByID(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)

	got, err := f.svc.GetByID(ctx, created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)

	_, err = f.svc.GetByID(ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInvoiceID)

	_, err = f.svc.GetByID(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
}

func TestListFilters(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	first, err := f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)
	_, err = f.svc.CreateRecord(ctx, f.newRequest())
	assert.NoError(t, err)

	all, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{})
	assert.NoError(t, err)
	assert.Len(t, all.Invoices, 2)

	byMember, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{MemberID: &first.MemberID})
	assert.NoError(t, err)
	assert.Len(t, byMember.Invoices, 1)
	assert.Equal(t, first.InvoiceNumber, byMember.Invoices[0].InvoiceNumber)

	paid := invoicedomain.InvoiceStatusPaid
	none, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: &paid})
	assert.NoError(t, err)
	assert.Empty(t, none.Invoices)
}

func TestListPagination(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.CreateRecord(ctx, f.newRequest())
		assert.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	first, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	assert.NoError(t, err)
	assert.Len(t, first.Invoices, 2)
	if assert.NotNil(t, first.PageInfo) {
		assert.True(t, first.PageInfo.HasMore)
		assert.NotEmpty(t, first.PageInfo.NextPageToken)
	}

	// Newest first; the second page picks up strictly older rows.
	assert.Equal(t, "25082026-5", first.Invoices[0].InvoiceNumber)

	second, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{
			PageSize:  2,
			PageToken: first.PageInfo.NextPageToken,
		},
	})
	assert.NoError(t, err)
	assert.Len(t, second.Invoices, 2)
	assert.Equal(t, "25082026-3", second.Invoices[0].InvoiceNumber)

	_, err = f.svc.List(ctx, invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{PageToken: "not-base64!"},
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidPageToken)
}
