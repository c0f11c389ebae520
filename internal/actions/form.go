// ABOUTME: Invoice form validation producing typed values or field-error maps
// ABOUTME: Pure functions; raw form fields arrive as strings and are coerced here

package actions

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerview/ledgerview/internal/store"
)

// Field-scoped validation messages shown inline next to the form inputs.
const (
	MsgSelectCustomer = "Please select a customer"
	MsgAmountTooSmall = "Amount must be greater than $0"
	MsgSelectStatus   = "Please select an invoice status"
)

// InvoiceForm holds the raw form fields as submitted. All values are strings
// because form fields arrive untyped.
type InvoiceForm struct {
	CustomerID string
	Amount     string
	Status     string
}

// ValidatedInvoice is the result of a successful validation. Amount is still
// in decimal dollars; conversion to cents happens in the action layer.
type ValidatedInvoice struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     string
}

// FieldErrors maps a field name to its list of error messages.
type FieldErrors map[string][]string

// For returns the messages for one field, or nil. Safe on a nil map.
func (e FieldErrors) For(field string) []string {
	if e == nil {
		return nil
	}
	return e[field]
}

// ValidateInvoiceForm checks the raw fields and returns either a typed value
// or a non-empty error map. Never both. The customer check is format-only;
// existence against the customers table is not verified here.
func ValidateInvoiceForm(form InvoiceForm) (*ValidatedInvoice, FieldErrors) {
	errs := FieldErrors{}

	if form.CustomerID == "" {
		errs["customerId"] = append(errs["customerId"], MsgSelectCustomer)
	}

	amount, err := decimal.NewFromString(form.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		errs["amount"] = append(errs["amount"], MsgAmountTooSmall)
	}

	if form.Status != store.InvoiceStatusPending && form.Status != store.InvoiceStatusPaid {
		errs["status"] = append(errs["status"], MsgSelectStatus)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &ValidatedInvoice{
		CustomerID: form.CustomerID,
		Amount:     amount,
		Status:     form.Status,
	}, nil
}

// AmountCents converts the validated dollar amount to integer cents,
// rounding half away from zero: 250.5 dollars becomes 25050 cents.
func (v *ValidatedInvoice) AmountCents() int64 {
	return v.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
