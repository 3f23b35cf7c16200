package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrStalePricing         = errors.New("stale pricing")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrPartialCommit        = errors.New("partial commit failure")
	ErrOrderLocked          = errors.New("order can no longer be modified")
	ErrInvoiceNotReady      = errors.New("order is not ready for invoicing")
)

// Shortfall is the deficit between requested and available stock for one product.
type Shortfall struct {
	ProductID int64
	Requested int
	Available int
}

// InsufficientStockError lists every product that cannot be fulfilled.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("product %d: requested %d, available %d", s.ProductID, s.Requested, s.Available))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock, strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// StaleLine describes a captured price that no longer matches live pricing.
type StaleLine struct {
	ProductID int64
	Captured  decimal.Decimal
	Current   decimal.Decimal
}

// StalePricingError lists every line whose captured price drifted.
type StalePricingError struct {
	Lines []StaleLine
}

func (e *StalePricingError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("product %d: captured %s, current %s", l.ProductID, l.Captured.StringFixed(2), l.Current.StringFixed(2)))
	}
	return fmt.Sprintf("%s: %s", ErrStalePricing, strings.Join(parts, "; "))
}

func (e *StalePricingError) Is(target error) bool { return target == ErrStalePricing }

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// MissingFieldsError lists every required field left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrMissingRequiredField }

// PartialCommitError reports a failed creation after part of the intent was written.
// Stage names the record that failed; the surrounding transaction has been rolled back.
type PartialCommitError struct {
	Stage string
	Err   error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("%s at %s: %v", ErrPartialCommit, e.Stage, e.Err)
}

func (e *PartialCommitError) Is(target error) bool { return target == ErrPartialCommit }

func (e *PartialCommitError) Unwrap() error { return e.Err }
