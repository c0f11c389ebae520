// ABOUTME: Form-action orchestration for invoice create, update, and delete
// ABOUTME: Validates, persists, invalidates the cached list view, and returns an intent value

package actions

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerview/ledgerview/internal/store"
)

// InvoiceListPath is the cached list view invalidated after every committed
// mutation, and the redirect target after create and update.
const InvoiceListPath = "/dashboard/invoices"

// Generic banner messages. Storage faults of every kind collapse into one
// message per action; the wrapped error is logged, never shown.
const (
	MsgMissingFieldsCreate = "Missing Fields. Failed to Create Invoice"
	MsgMissingFieldsUpdate = "Missing Fields. Failed to Update Invoice"
	MsgCreateFailed        = "Database error: Failed to create invoice. Please try again later."
	MsgUpdateFailed        = "Database error: Failed to update invoice. Please try again later."
	MsgDeleteFailed        = "Database error: Failed to delete invoice. Please try again later."
	MsgDeleted             = "Invoice deleted successfully"
)

// Result is the returned intent of a form action. Exactly one of the
// following shapes comes back: field errors with a banner message (re-render
// the form), a banner message alone, or a redirect target.
type Result struct {
	Errors     FieldErrors
	Message    string
	RedirectTo string
}

// InvoiceStore is the subset of the store the actions need.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *store.Invoice) error
	UpdateInvoice(ctx context.Context, inv *store.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
}

// Invalidator marks a cached view as stale so it is recomputed on next access.
type Invalidator interface {
	Invalidate(path string)
}

// Actions orchestrates the invoice form actions.
type Actions struct {
	store  InvoiceStore
	cache  Invalidator
	logger *slog.Logger
}

// New creates the action layer over a store and a view cache.
func New(invoiceStore InvoiceStore, cache Invalidator) *Actions {
	return &Actions{
		store:  invoiceStore,
		cache:  cache,
		logger: slog.Default().With("component", "actions"),
	}
}

// CreateInvoice validates the form, inserts a new invoice with a generated ID
// and today's UTC date, invalidates the cached list, and redirects to it.
func (a *Actions) CreateInvoice(ctx context.Context, form InvoiceForm) Result {
	validated, errs := ValidateInvoiceForm(form)
	if errs != nil {
		return Result{Errors: errs, Message: MsgMissingFieldsCreate}
	}

	inv := &store.Invoice{
		ID:          uuid.NewString(),
		CustomerID:  validated.CustomerID,
		AmountCents: validated.AmountCents(),
		Status:      validated.Status,
		Date:        time.Now().UTC().Format("2006-01-02"),
	}

	if err := a.store.CreateInvoice(ctx, inv); err != nil {
		a.logger.Error("create invoice failed", "error", err, "customer", inv.CustomerID)
		return Result{Message: MsgCreateFailed}
	}

	a.cache.Invalidate(InvoiceListPath)
	return Result{RedirectTo: InvoiceListPath}
}

// UpdateInvoice validates the form and updates the customer, amount, and
// status of an existing invoice. The id and date are never changed. An id
// matching no row updates nothing and still redirects; see UpdateInvoice on
// the store.
func (a *Actions) UpdateInvoice(ctx context.Context, id string, form InvoiceForm) Result {
	validated, errs := ValidateInvoiceForm(form)
	if errs != nil {
		return Result{Errors: errs, Message: MsgMissingFieldsUpdate}
	}

	inv := &store.Invoice{
		ID:          id,
		CustomerID:  validated.CustomerID,
		AmountCents: validated.AmountCents(),
		Status:      validated.Status,
	}

	if err := a.store.UpdateInvoice(ctx, inv); err != nil {
		a.logger.Error("update invoice failed", "error", err, "id", id)
		return Result{Message: MsgUpdateFailed}
	}

	a.cache.Invalidate(InvoiceListPath)
	return Result{RedirectTo: InvoiceListPath}
}

// DeleteInvoice removes an invoice by id. No field validation: the id comes
// from a route parameter on an already-rendered list, and no redirect is
// issued. The cached list is invalidated before the delete statement runs, so
// a concurrent reader may recompute the view against the pre-delete table.
func (a *Actions) DeleteInvoice(ctx context.Context, id string) Result {
	a.cache.Invalidate(InvoiceListPath)

	if err := a.store.DeleteInvoice(ctx, id); err != nil {
		a.logger.Error("delete invoice failed", "error", err, "id", id)
		return Result{Message: MsgDeleteFailed}
	}

	return Result{Message: MsgDeleted}
}
