package log

import (
	"errors"

	"findash/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldDuration      = "duration_ms"
	FieldCollection    = "collection"
	FieldCollections   = "collections"
	FieldKey           = "key"
	FieldRevision      = "revision"
	FieldAccountID     = "account_id"
	FieldTransactionID = "transaction_id"
	FieldTransferID    = "transfer_id"
	FieldItemID        = "item_id"
	FieldPaymentID     = "payment_id"
	FieldHomeID        = "home_id"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldCount         = "count"
	FieldBackend       = "backend"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentBackend = "backend"
	ComponentReports = "reports"
	ComponentCache   = "cache"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpLoad     = "load"
	OpPersist  = "persist"
	OpRollback = "rollback"
	OpTransfer = "transfer"
	OpRevert   = "revert"
	OpPay      = "pay"
	OpArchive  = "archive"
	OpAmortize = "amortize"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConsistency   = "consistency_error"
	ErrorTypePersistence   = "persistence_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeInternal      = "internal_error"
)

// ErrorType classifies err into one of the ErrorType categories.
func ErrorType(err error) string {
	var (
		ve *core.ValidationError
		ce *core.ConsistencyError
		pe *core.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		return ErrorTypeValidation
	case errors.As(err, &ce):
		return ErrorTypeConsistency
	case errors.As(err, &pe):
		return ErrorTypePersistence
	default:
		return ErrorTypeInternal
	}
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error and its category
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = ErrorType(err)
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the identifying fields of a transaction
func (f LogFields) WithTransaction(tx core.Transaction) LogFields {
	f[FieldTransactionID] = tx.ID
	f[FieldAccountID] = tx.AccountID
	f[FieldAmount] = tx.Amount.String()
	f[FieldDate] = tx.Date.String()
	if tx.TransferID != "" {
		f[FieldTransferID] = tx.TransferID
	}
	return f
}

// WithPayment adds the identifying fields of a payment record
func (f LogFields) WithPayment(p core.PaymentRecord) LogFields {
	f[FieldPaymentID] = p.ID
	f[FieldItemID] = p.ItemID
	f[FieldAmount] = p.Amount.String()
	f[FieldDate] = p.Date.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
