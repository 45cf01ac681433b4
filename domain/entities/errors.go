package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWinningNumbers is returned when winning numbers fail format validation
	ErrInvalidWinningNumbers = errors.New("invalid winning numbers")

	// ErrInvalidTicket is returned when a ticket line item fails validation
	ErrInvalidTicket = errors.New("invalid ticket")

	// ErrDrawNotFound is returned when the requested draw does not exist
	ErrDrawNotFound = errors.New("draw not found")

	// ErrDrawAlreadyFinalized is returned when settling a finalized draw without recompute
	ErrDrawAlreadyFinalized = errors.New("draw already finalized")

	// ErrSalesClosed is returned when a sale targets a draw that no longer accepts sales
	ErrSalesClosed = errors.New("draw no longer accepts sales")

	// ErrInvoiceNotFound is returned when the requested invoice does not exist
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrSellerNotFound is returned when the requested seller does not exist
	ErrSellerNotFound = errors.New("seller not found")

	// ErrClientNotFound is returned when the requested client does not exist
	ErrClientNotFound = errors.New("client not found")

	// ErrForbidden is returned when the caller lacks the capability for an operation
	ErrForbidden = errors.New("forbidden")

	// ErrAmountOverflow is returned when a money amount exceeds the representable range
	ErrAmountOverflow = errors.New("amount out of range")

	// ErrSettlementInProgress is returned when another settlement holds the draw lock
	ErrSettlementInProgress = errors.New("settlement already in progress for draw")
)

// ValidationError describes a single rejected field
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.kind, e.Field, e.Reason)
}

// Unwrap lets errors.Is match the validation category
func (e *ValidationError) Unwrap() error {
	return e.kind
}

func newWinningNumbersError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidWinningNumbers}
}

func newTicketError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidTicket}
}
