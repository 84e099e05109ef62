package sequence

import (
	"context"
	"fmt"

	"github.com/fitora/fitora/internal/sequence/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns the database-backed sequence store.
func NewRepository(db *gorm.DB) domain.Store {
	return &repository{db: db}
}

// Next increments and returns the counter for the given day in a single
// atomic statement. Concurrent callers each observe a distinct value.
func (r *repository) Next(ctx context.Context, dateKey string) (int64, error) {
	if dateKey == "" {
		return 0, fmt.Errorf("sequence date key is empty")
	}

	if r.db.Dialector.Name() == "mysql" {
		return r.nextMySQL(ctx, dateKey)
	}

	var next int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO invoice_sequences (date_key, value, updated_at)
		 VALUES (?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (date_key)
		 DO UPDATE SET value = invoice_sequences.value + 1, updated_at = CURRENT_TIMESTAMP
		 RETURNING value`,
		dateKey,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// nextMySQL uses ON DUPLICATE KEY UPDATE; the upsert takes a row lock, so
// the follow-up read inside the same transaction is stable.
func (r *repository) nextMySQL(ctx context.Context, dateKey string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO invoice_sequences (date_key, value, updated_at)
			 VALUES (?, 1, CURRENT_TIMESTAMP)
			 ON DUPLICATE KEY UPDATE value = value + 1, updated_at = CURRENT_TIMESTAMP`,
			dateKey,
		).Error; err != nil {
			return err
		}
		return tx.Raw(
			`SELECT value FROM invoice_sequences WHERE date_key = ?`,
			dateKey,
		).Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
