package services

import (
	"database/sql"
	"errors"
	"fmt"

	"shopvision/internal/pricing"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidLineItem   = errors.New("invalid line item")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingClient     = pricing.ErrMissingClient
	ErrUnknownProduct    = errors.New("unknown product")
	ErrUnknownClient     = errors.New("unknown wholesale client")
	ErrNotFound          = errors.New("not found")
	ErrBadCreds          = errors.New("invalid email or password")
	ErrEmailTaken        = errors.New("email already registered")
)

// StoreError is a failure of the backing store. It is surfaced to the
// caller as is and never retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// StockError reports the product that could not cover a sale.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// LineItemError points at the offending line (0-based) of a transaction.
type LineItemError struct {
	Index  int
	Reason string
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.Index, e.Reason)
}

func (e *LineItemError) Is(target error) bool {
	return target == ErrInvalidLineItem || target == ErrValidation
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func unknownProduct(id string) error {
	return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
}

var known = []error{
	ErrValidation, ErrInsufficientStock, ErrMissingClient, ErrUnknownProduct,
	ErrUnknownClient, ErrNotFound, ErrBadCreds, ErrEmailTaken,
}

// storeErr leaves domain errors untouched and wraps everything else as a
// StoreError for op. sql.ErrNoRows becomes notFound when given.
func storeErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
