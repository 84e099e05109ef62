// Package domain contains the persistence model for invoice numbering.
package domain

import (
	"context"
	"time"
)

// DailySequence backs the day-scoped invoice counter. One row per calendar
// day, incremented atomically by the store.
type DailySequence struct {
	DateKey   string    `gorm:"primaryKey;column:date_key;type:text"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DailySequence) TableName() string { return "invoice_sequences" }

// Store hands out the next value of the per-day counter. Atomicity across
// processes is the store's contract; callers never hold their own counter.
type Store interface {
	Next(ctx context.Context, dateKey string) (int64, error)
}
