// Package domain contains the member model consumed by invoicing.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("member not found")

// Member is a club member. Only the identity fields consumed by invoice
// documents live here; membership management is owned elsewhere.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	FirstName string       `gorm:"type:text;not null"`
	LastName  string       `gorm:"type:text;not null"`
	Email     string       `gorm:"type:text;not null;index"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }

// FullName is the display name printed on invoices.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

type Lookup interface {
	GetMember(ctx context.Context, id snowflake.ID) (Member, error)
}
