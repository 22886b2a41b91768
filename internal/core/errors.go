package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyName           = errors.New("empty name")
	ErrSelfTransfer        = errors.New("source and destination must differ")
	ErrInsufficientFunds   = errors.New("amount exceeds source balance")
	ErrMissingAccount      = errors.New("account not selected")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrNotFound            = errors.New("record not found")
	ErrTransferPairMissing = errors.New("transfer counterpart not found")
	ErrTransferLeg         = errors.New("transfer transactions must be reverted, not edited or deleted")
	ErrLinkedPayment       = errors.New("transaction belongs to a payment record; edit the payment instead")
	ErrFundingAccount      = errors.New("payments must be funded from a bank account")
)

// ValidationError reports input rejected before any state was touched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Err.Error()
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ConsistencyError reports a linked record that should exist but does not.
type ConsistencyError struct {
	Op  string
	ID  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// NotFound builds a ConsistencyError for a missing record.
func NotFound(op, id string) error {
	return &ConsistencyError{Op: op, ID: id, Err: ErrNotFound}
}

// PersistenceCode classifies store rejections.
type PersistenceCode string

const (
	CodeInvalidKey         PersistenceCode = "invalid_key"
	CodeNotAllowed         PersistenceCode = "not_allowed"
	CodeSchemaInvalid      PersistenceCode = "schema_invalid"
	CodeValueNotSerialized PersistenceCode = "value_not_serializable"
	CodeValueTooLarge      PersistenceCode = "value_too_large"
	CodeValueTooDeep       PersistenceCode = "value_too_deep"
	CodeWriteFailed        PersistenceCode = "write_failed"
	CodeReadFailed         PersistenceCode = "read_failed"
)

// PersistenceError reports a failed or rejected store access.
type PersistenceError struct {
	Key  string
	Code PersistenceCode
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %s", e.Key, e.Code)
	}
	return fmt.Sprintf("store %s: %s: %v", e.Key, e.Code, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PersistenceCodeOf extracts the code of a PersistenceError anywhere in err's chain.
func PersistenceCodeOf(err error) (PersistenceCode, bool) {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
