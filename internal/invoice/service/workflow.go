package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	"github.com/fitora/fitora/internal/invoice/render"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
)

// workflowState tags the document saga. Each transition performs exactly
// one step, so a retry resumes from the record instead of re-running the
// duplicate-payment path.
type workflowState string

const (
	stateCreated  workflowState = "CREATED"
	stateComposed workflowState = "COMPOSED"
	stateUploaded workflowState = "UPLOADED"
	stateLinked   workflowState = "LINKED"
)

const (
	paymentLockTTL    = 30 * time.Second
	pdfContentType    = "application/pdf"
	paymentLockPrefix = "invoice:payment:"
)

// ErrCreationInProgress reports a concurrent creation attempt for the same
// payment that is still holding the creation lock.
var ErrCreationInProgress = errors.New("invoice creation already in progress for this payment")

type documentWorkflow struct {
	state    workflowState
	invoice  invoicedomain.Invoice
	member   string
	settings *settingsdomain.InvoiceSettings
	document []byte
	url      string
}

// CreateInvoice runs the full invoicing workflow: create the record, compose
// the document, upload it, and link the resulting URL. A failure after the
// record step leaves the record in place without pdf_url; there is no
// rollback, only RetryDocument.
func (s *Service) CreateInvoice(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	if err := req.Validate(); err != nil {
		return invoicedomain.Invoice{}, err
	}

	lockKey := paymentLockPrefix + req.PaymentID.String()
	token, acquired, err := s.locker.TryLock(ctx, lockKey, paymentLockTTL)
	if err != nil {
		s.log.Warn("payment lock unavailable, relying on uniqueness constraint", zap.Error(err))
	} else if !acquired {
		return invoicedomain.Invoice{}, ErrCreationInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey, token); err != nil {
			s.log.Warn("failed to release payment lock", zap.Error(err))
		}
	}()

	invoice, err := s.CreateRecord(ctx, req)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	return s.runDocumentWorkflow(ctx, invoice)
}

// RetryDocument re-runs the document phase for an existing invoice. The
// record is reused as-is; the duplicate-payment check never applies here.
func (s *Service) RetryDocument(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return s.runDocumentWorkflow(ctx, invoice)
}

func (s *Service) runDocumentWorkflow(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	wf := &documentWorkflow{state: stateCreated, invoice: invoice}

	for wf.state != stateLinked {
		step := wf.state
		if err := s.advance(ctx, wf); err != nil {
			if s.metrics != nil {
				s.metrics.DocumentFailures.WithLabelValues(string(step)).Inc()
			}
			s.log.Error("invoice document workflow failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.String("state", string(step)),
				zap.Error(err))
			return invoicedomain.Invoice{}, err
		}
	}

	if s.metrics != nil {
		s.metrics.DocumentsRendered.Inc()
	}
	s.log.Info("invoice document linked",
		zap.String("invoice_number", wf.invoice.InvoiceNumber),
		zap.String("pdf_url", wf.url))
	return wf.invoice, nil
}

// advance performs exactly one state transition.
func (s *Service) advance(ctx context.Context, wf *documentWorkflow) error {
	switch wf.state {
	case stateCreated:
		if err := s.loadDocumentInputs(ctx, wf); err != nil {
			return err
		}
		document, err := s.renderer.Render(ctx, render.DocumentInput{
			Invoice:       wf.invoice,
			MemberName:    wf.member,
			LiveSettings:  wf.settings,
			Currency:      wf.invoice.Currency,
			CurrencyLabel: s.invoicing.Get().CurrencyLabel,
		})
		if err != nil {
			return err
		}
		wf.document = document
		wf.state = stateComposed
		return nil

	case stateComposed:
		url, err := s.storage.Upload(ctx, wf.invoice.InvoiceNumber+".pdf", pdfContentType, wf.document)
		if err != nil {
			return fmt.Errorf("Failed to upload PDF to Storage: %w", err)
		}
		wf.url = url
		wf.state = stateUploaded
		return nil

	case stateUploaded:
		if err := s.linkDocument(ctx, wf.invoice.ID, wf.url); err != nil {
			return err
		}
		wf.invoice.PDFURL = &wf.url
		wf.state = stateLinked
		return nil

	default:
		return fmt.Errorf("invalid workflow state %q", wf.state)
	}
}

// loadDocumentInputs fetches the member and the live invoice settings
// concurrently. The member is required; live settings degrade to the
// invoice's stored snapshot when unavailable.
func (s *Service) loadDocumentInputs(ctx context.Context, wf *documentWorkflow) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		member, err := s.members.GetMember(gctx, wf.invoice.MemberID)
		if err != nil {
			return err
		}
		wf.member = member.FullName()
		return nil
	})
	g.Go(func() error {
		live, err := s.settings.Invoice(gctx)
		if err != nil {
			s.log.Warn("live invoice settings unavailable, using stored snapshot", zap.Error(err))
			return nil
		}
		wf.settings = &live
		return nil
	})

	return g.Wait()
}
