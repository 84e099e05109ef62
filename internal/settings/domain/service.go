package domain

import (
	"context"
	"errors"
)

// ErrGeneralSettingsMissing is fatal: invoices cannot be issued without the
// club's business identity.
var ErrGeneralSettingsMissing = errors.New("General settings not configured")

type Service interface {
	// General returns the business identity or ErrGeneralSettingsMissing.
	General(ctx context.Context) (GeneralSettings, error)
	// Invoice returns the invoice configuration, falling back to defaults
	// when the row is absent.
	Invoice(ctx context.Context) (InvoiceSettings, error)
}
