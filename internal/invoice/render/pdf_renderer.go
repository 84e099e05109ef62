package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	"github.com/fitora/fitora/internal/invoice/format"
	settingsdomain "github.com/fitora/fitora/internal/settings/domain"
)

const logoFetchTimeout = 5 * time.Second

// DocumentInput carries everything the invoice document prints. Business
// identity comes from the invoice's immutable snapshot; LiveSettings, when
// present, takes priority for the displayed VAT rate and footer notes.
type DocumentInput struct {
	Invoice       invoicedomain.Invoice
	MemberName    string
	LiveSettings  *settingsdomain.InvoiceSettings
	Currency      string
	CurrencyLabel string
}

// Renderer assembles the printable invoice document.
type Renderer interface {
	Render(ctx context.Context, input DocumentInput) ([]byte, error)
}

type pdfRenderer struct {
	log    *zap.Logger
	client *http.Client
}

func NewRenderer(log *zap.Logger) Renderer {
	return &pdfRenderer{
		log:    log.Named("invoice.render"),
		client: &http.Client{Timeout: logoFetchTimeout},
	}
}

func (r *pdfRenderer) Render(ctx context.Context, input DocumentInput) (out []byte, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Failed to generate invoice PDF: %w", err)
		}
	}()

	invoice := input.Invoice

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	// Logo is best-effort: a missing or unreachable image never aborts the
	// document.
	if logo, ext, ok := r.fetchLogo(ctx, invoice.BusinessLogoURL); ok {
		m.AddRow(24,
			image.NewFromBytesCol(3, logo, ext, props.Rect{Percent: 80}),
			col.New(9),
		)
	}

	m.AddRow(30,
		col.New(7).Add(
			text.New(invoice.BusinessName, props.Text{Size: 12, Style: fontstyle.Bold}),
			text.New(businessAddressLine(invoice), props.Text{Top: 6, Size: 9}),
			text.New(invoice.BusinessCountry, props.Text{Top: 10, Size: 9}),
			text.New("IF : "+invoice.BusinessTaxID, props.Text{Top: 14, Size: 9}),
		),
		col.New(5).Add(
			text.New(invoice.BusinessPhone, props.Text{Size: 9, Align: align.Right}),
			text.New(invoice.BusinessEmail, props.Text{Top: 4, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(14,
		text.NewCol(12, "FACTURE", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(14,
		col.New(6).Add(
			text.New("Facture N° : "+invoice.InvoiceNumber, props.Text{Size: 10}),
			text.New("Date : "+invoice.IssueDate.Format("02/01/2006"), props.Text{Top: 5, Size: 10}),
		),
		col.New(6).Add(
			text.New("Client : "+input.MemberName, props.Text{Size: 10, Align: align.Right}),
		),
	)

	m.AddRow(4, line.NewCol(12))

	displayRate := invoice.VATRate
	if input.LiveSettings != nil {
		displayRate = input.LiveSettings.VATRate
	}

	rows := []struct {
		label  string
		amount float64
	}{
		{"Abonnement (HT)", invoice.Amount},
		{fmt.Sprintf("TVA (%s%%)", format.FormatRate(displayRate)), invoice.TaxAmount},
		{"Total (TTC)", invoice.TotalAmount},
	}
	for i, row := range rows {
		style := fontstyle.Normal
		if i == len(rows)-1 {
			style = fontstyle.Bold
		}
		m.AddRow(9,
			text.NewCol(8, row.label, props.Text{Size: 10, Style: style}),
			text.NewCol(4, format.FormatMoney(row.amount)+" "+input.Currency, props.Text{
				Size:  10,
				Style: style,
				Align: align.Right,
			}),
		)
	}

	words, err := format.AmountInWords(invoice.TotalAmount, input.CurrencyLabel)
	if err != nil {
		return nil, err
	}
	m.AddRow(12,
		text.NewCol(12, "Arrêtée la présente facture à la somme de : "+words, props.Text{
			Size:  9,
			Style: fontstyle.Italic,
			Top:   4,
		}),
	)

	if footer := footerNotes(input); footer != "" {
		m.AddRow(4, line.NewCol(12))
		for _, notes := range strings.Split(footer, "\n") {
			m.AddRow(6,
				text.NewCol(12, notes, props.Text{Size: 8, Align: align.Center}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// footerNotes prefers the live settings notes over the invoice's stored
// notes; an empty result suppresses the footer block entirely.
func footerNotes(input DocumentInput) string {
	if input.LiveSettings != nil {
		if notes := strings.TrimSpace(input.LiveSettings.FooterNotes); notes != "" {
			return notes
		}
	}
	if input.Invoice.FooterNotes != nil {
		return strings.TrimSpace(*input.Invoice.FooterNotes)
	}
	return ""
}

func businessAddressLine(invoice invoicedomain.Invoice) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{invoice.BusinessStreet, invoice.BusinessPostalCode, invoice.BusinessCity} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, ", ")
}

func (r *pdfRenderer) fetchLogo(ctx context.Context, url string) ([]byte, extension.Type, bool) {
	if strings.TrimSpace(url) == "" {
		return nil, "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.log.Warn("skipping invoice logo", zap.String("url", url), zap.Error(err))
		return nil, "", false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("skipping invoice logo", zap.String("url", url), zap.Error(err))
		return nil, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warn("skipping invoice logo",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return nil, "", false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		r.log.Warn("skipping invoice logo", zap.String("url", url), zap.Error(err))
		return nil, "", false
	}

	ext := extension.Png
	lower := strings.ToLower(url)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		ext = extension.Jpg
	}
	return data, ext, true
}
