package domain

import "errors"

var (
	// ErrDuplicatePayment distinguishes the at-most-one-invoice-per-payment
	// violation from other persistence failures.
	ErrDuplicatePayment = errors.New("Invoice already exists for this payment")

	// ErrNullInvoiceNumber is returned when the sequence store yields no value.
	ErrNullInvoiceNumber = errors.New("RPC returned null invoice number")

	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrInvalidInvoiceID = errors.New("invalid invoice id")
	ErrInvalidAmount    = errors.New("total amount must be positive")
	ErrMissingPayment   = errors.New("payment id is required")
	ErrMissingMember    = errors.New("member id is required")
	ErrInvalidPageToken = errors.New("invalid page token")
)
