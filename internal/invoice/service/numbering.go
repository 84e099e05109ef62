package service

import (
	"context"
	"fmt"

	invoicedomain "github.com/fitora/fitora/internal/invoice/domain"
	"github.com/fitora/fitora/internal/invoice/format"
)

// NextInvoiceNumber reserves the next day-scoped number, e.g. 25082026-3.
// The fetch-and-increment is delegated entirely to the sequence store; this
// service holds no counter of its own, so numbering stays correct across
// processes.
func (s *Service) NextInvoiceNumber(ctx context.Context) (string, error) {
	now := s.clock.Now()

	seq, err := s.sequences.Next(ctx, format.DateKey(now))
	if err != nil {
		return "", fmt.Errorf("Failed to generate invoice number: %w", err)
	}
	if seq <= 0 {
		return "", invoicedomain.ErrNullInvoiceNumber
	}

	number, err := format.FormatInvoiceNumber(now, seq)
	if err != nil {
		return "", fmt.Errorf("Failed to generate invoice number: %w", err)
	}
	return number, nil
}
