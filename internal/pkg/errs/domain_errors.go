package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrStockViolation    = errors.New("stock violation")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
)

// UnauthorizedError reports an actor acting on a resource it does not own.
type UnauthorizedError struct {
	Resource string
	ActorID  any
}

func NewUnauthorizedError(resource string, actorID any) *UnauthorizedError {
	return &UnauthorizedError{Resource: resource, ActorID: actorID}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %v does not own %s", ErrUnauthorized, e.ActorID, e.Resource)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// CurrencyMismatchError reports a declared currency that differs from the
// currency derived from the shipping country.
type CurrencyMismatchError struct {
	Declared string
	Expected string
}

func NewCurrencyMismatchError(declared, expected string) *CurrencyMismatchError {
	return &CurrencyMismatchError{Declared: declared, Expected: expected}
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: declared %s, shipping country settles in %s", ErrCurrencyMismatch, e.Declared, e.Expected)
}

func (e *CurrencyMismatchError) Unwrap() error {
	return ErrCurrencyMismatch
}

type StockViolationKind string

const (
	OutOfStock        StockViolationKind = "out_of_stock"
	InsufficientStock StockViolationKind = "insufficient_stock"
)

// StockViolation describes one product that cannot cover the requested quantity.
type StockViolation struct {
	ProductID string             `json:"productId"`
	Name      string             `json:"name"`
	Requested int                `json:"requested"`
	Available int                `json:"available"`
	Kind      StockViolationKind `json:"kind"`
}

// StockViolationError lists every offending product of a cart.
type StockViolationError struct {
	Violations []StockViolation
}

func NewStockViolationError(violations ...StockViolation) *StockViolationError {
	return &StockViolationError{Violations: violations}
}

func (e *StockViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s %s (requested %d, available %d)", v.Name, v.Kind, v.Requested, v.Available))
	}
	return fmt.Sprintf("%s: %s", ErrStockViolation, strings.Join(parts, "; "))
}

func (e *StockViolationError) Unwrap() error {
	return ErrStockViolation
}

// InvalidTransitionError reports an illegal status change or a mutation
// attempted in a status that forbids it.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot go from %s to %s", ErrInvalidTransition, e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConflictError reports a duplicate key in storage.
type ConflictError struct {
	Resource string
	Key      any
	Cause    error
}

func NewConflictError(resource string, key any) *ConflictError {
	return &ConflictError{Resource: resource, Key: key}
}

func NewConflictErrorWithCause(resource string, key any, cause error) *ConflictError {
	return &ConflictError{Resource: resource, Key: key, Cause: cause}
}

func (e *ConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %v already exists", ErrConflict, e.Resource, e.Key), e.Cause)
}

func (e *ConflictError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConflict}
	}
	return []error{ErrConflict, e.Cause}
}
