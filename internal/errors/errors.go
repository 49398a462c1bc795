// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoAccount         = errors.New("no account id available")
	ErrChainUnavailable  = errors.New("option chain unavailable")
	ErrNoMatchingOption  = errors.New("no matching option contract")
	ErrStrikeMismatch    = errors.New("leg strikes do not match")
	ErrDuplicateContract = errors.New("near and far legs resolve to the same contract")
	ErrPositionOpen      = errors.New("a position is already open")
	ErrNoOpenPosition    = errors.New("no open position")
	ErrOrderRejected     = errors.New("order rejected by gateway")
	ErrNotValidated      = errors.New("order submitted without prior validation")
	ErrStrategyNotFound  = errors.New("strategy not found")
	ErrEngineStopped     = errors.New("engine is not running")
	ErrConfigInvalid     = errors.New("invalid configuration")
)

// GatewayError represents a failed call against the broker gateway. It
// carries the endpoint and HTTP status so aborts are attributable in logs.
type GatewayError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway error [%s]: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway error [%s]: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error [%s]: %s", e.Endpoint, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(endpoint string, status int, message string, err error) *GatewayError {
	return &GatewayError{
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

// OrderError represents an error related to order operations.
type OrderError struct {
	COID   string
	Action string // validate, submit, cancel
	Reason string
	Err    error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order error [%s] %s: %s: %v", e.COID, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("order error [%s] %s: %s", e.COID, e.Action, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError.
func NewOrderError(coid, action, reason string, err error) *OrderError {
	return &OrderError{
		COID:   coid,
		Action: action,
		Reason: reason,
		Err:    err,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
