// Package domain contains persistence models for club settings.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Setting names known to the invoicing subsystem.
const (
	SettingGeneral = "general_settings"
	SettingInvoice = "invoice_settings"
)

// Setting is a named JSON configuration row edited from the admin UI.
type Setting struct {
	Name      string            `gorm:"primaryKey;type:text"`
	Value     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

// BusinessAddress is the postal address printed on invoices.
type BusinessAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// GeneralSettings is the club's business identity. A copy is snapshotted
// onto every invoice at creation time.
type GeneralSettings struct {
	BusinessName    string          `json:"business_name"`
	BusinessAddress BusinessAddress `json:"business_address"`
	TaxID           string          `json:"tax_id"`
	Phone           string          `json:"phone,omitempty"`
	Email           string          `json:"email,omitempty"`
	LogoURL         string          `json:"logo_url,omitempty"`
}

// InvoiceSettings holds the VAT and footer configuration applied to new
// invoices. Absent rows fall back to configured defaults, never to an error.
type InvoiceSettings struct {
	VATRate      float64 `json:"vat_rate"`
	FooterNotes  string  `json:"invoice_footer_notes,omitempty"`
	AutoGenerate bool    `json:"auto_generate"`
}
