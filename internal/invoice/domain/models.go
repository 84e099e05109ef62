// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states. Transitions beyond
// ISSUED are owned by the billing back office.
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is a legally-formatted tax invoice for one subscription payment.
// Business fields are immutable snapshots captured at creation time; later
// settings edits never alter them.
type Invoice struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	InvoiceNumber  string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_number"`
	PaymentID      snowflake.ID  `gorm:"not null;uniqueIndex:ux_invoices_payment"`
	MemberID       snowflake.ID  `gorm:"not null;index"`
	SubscriptionID *snowflake.ID `gorm:"index"`
	IssueDate      time.Time     `gorm:"not null"`

	// Amounts in major currency units, two decimals.
	// Amount + TaxAmount == TotalAmount exactly.
	Amount      float64 `gorm:"not null"` // net (HT)
	TaxAmount   float64 `gorm:"not null"`
	TotalAmount float64 `gorm:"not null"`
	VATRate     float64 `gorm:"not null"`
	Currency    string  `gorm:"type:text;not null"`

	// Business snapshot.
	BusinessName       string `gorm:"type:text;not null"`
	BusinessStreet     string `gorm:"type:text"`
	BusinessCity       string `gorm:"type:text"`
	BusinessPostalCode string `gorm:"type:text"`
	BusinessCountry    string `gorm:"type:text"`
	BusinessTaxID      string `gorm:"type:text"`
	BusinessPhone      string `gorm:"type:text"`
	BusinessEmail      string `gorm:"type:text"`
	BusinessLogoURL    string `gorm:"type:text"`

	FooterNotes *string       `gorm:"type:text"`
	Status      InvoiceStatus `gorm:"type:text;not null;default:'ISSUED'"`
	PDFURL      *string       `gorm:"column:pdf_url;type:text"`
	CreatedBy   snowflake.ID  `gorm:"not null"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
