package service

import (
	"errors"
	"fmt"

	"go-pos-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidationError is a malformed request: the caller has to fix the input
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

// NotFoundError names a referenced record that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InsufficientStockError reports the ingredient that cannot cover a request
type InsufficientStockError struct {
	IngredientID uuid.UUID
	Ingredient   string
	Unit         string
	Needed       decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Needed %s, available %s", e.Ingredient, e.Needed.String(), e.Available.String())
}

var (
	ErrInvalidStatusTransition = errors.New("invalid sale status transition")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrUserInactive            = errors.New("user account is inactive")
	ErrWrongPassword           = errors.New("current password is incorrect")
	ErrSessionTimeout          = errors.New("session expired due to inactivity")
	ErrSessionReplaced         = errors.New("session expired (logged in on another device)")
)

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// validationFrom turns the first struct-tag failure into a ValidationError
func validationFrom(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		first := errs[0]
		return &ValidationError{Field: first.FailedField, Message: first.Message()}
	}
	return nil
}

// checkScale rejects values the column would round, e.g. 0.00004 into a decimal(20,4)
func checkScale(field string, d decimal.Decimal, places int32) error {
	if !validator.WithinScale(d, places) {
		return newValidationError(field, "%s must have at most %d decimal places", field, places)
	}
	return nil
}

// translateNotFound maps gorm.ErrRecordNotFound to a NotFoundError and passes anything else through
func translateNotFound(err error, resource string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource, id)
	}
	return err
}
