package models

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NotFoundError reports a missing product, customer or purchase
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// ValidationError reports malformed or missing input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InsufficientFundsError rejects a purchase the customer cannot pay for
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance (required=%s, available=%s)", e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// ConflictError reports a write that would break a uniqueness or
// referential rule
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NotFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
