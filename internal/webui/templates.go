// ABOUTME: Template rendering functions for the dashboard UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package webui

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ledgerview/ledgerview/internal/actions"
	"github.com/ledgerview/ledgerview/internal/store"
)

// Template data types
type loginData struct {
	Title     string
	User      *store.User // always nil; the gate keeps logged-in users off this page
	Error     string
	CSRFToken string
}

type dashboardData struct {
	Title        string
	User         *store.User
	CSRFToken    string
	InvoiceCount int
	PaidTotal    string
	PendingTotal string
}

type invoicesPageData struct {
	Title     string
	User      *store.User
	CSRFToken string
	Table     []byte
	Message   string
}

type invoiceRow struct {
	ID       string
	Customer string
	Amount   string
	Status   string
	Date     string
}

type invoiceTableData struct {
	Invoices []invoiceRow
}

type invoiceFormData struct {
	Title      string
	User       *store.User
	CSRFToken  string
	Action     string
	CustomerID string
	Amount     string
	Status     string
	Customers  []*store.Customer
	Errors     actions.FieldErrors
	Message    string
}

// csrfPlaceholder marks where the cached table fragment needs the visitor's
// CSRF token filled in.
const csrfPlaceholder = "__CSRF_TOKEN__"

// formatCents renders integer cents as a dollar amount string, e.g. 25050 -> "250.50".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// renderLoginPage renders the login page
func (ui *WebUI) renderLoginPage(w http.ResponseWriter, errorMsg, csrfToken string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := loginData{
		Title:     "Login",
		Error:     errorMsg,
		CSRFToken: csrfToken,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		ui.logger.Error("failed to render login page", "error", err)
	}
}

// renderDashboard renders the dashboard landing page
func (ui *WebUI) renderDashboard(w http.ResponseWriter, data dashboardData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/dashboard.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		ui.logger.Error("failed to render dashboard", "error", err)
	}
}

// renderInvoicesPage renders the invoice list page around the cached table fragment
func (ui *WebUI) renderInvoicesPage(w http.ResponseWriter, data invoicesPageData) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/invoices.html"))

	// The cached fragment is user-independent; the per-browser CSRF token is
	// substituted into the delete forms at serve time.
	table := bytes.ReplaceAll(data.Table, []byte(csrfPlaceholder), []byte(template.HTMLEscapeString(data.CSRFToken)))

	type pageData struct {
		invoicesPageData
		TableHTML template.HTML
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, pageData{invoicesPageData: data, TableHTML: template.HTML(table)}); err != nil {
		ui.logger.Error("failed to render invoices page", "error", err)
	}
}

// renderInvoiceTable renders the invoice table fragment from the store. The
// result is what the view cache holds for the invoice list path; it contains
// no CSRF tokens or per-user markup.
func (ui *WebUI) renderInvoiceTable(ctx context.Context) ([]byte, error) {
	invoices, err := ui.store.ListInvoices(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	customers, err := ui.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rows := make([]invoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		customer := names[inv.CustomerID]
		if customer == "" {
			customer = inv.CustomerID
		}
		rows = append(rows, invoiceRow{
			ID:       inv.ID,
			Customer: customer,
			Amount:   "$" + formatCents(inv.AmountCents),
			Status:   inv.Status,
			Date:     inv.Date,
		})
	}

	tmpl := template.Must(template.ParseFS(templateFS, "templates/partials/invoice_table.html"))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, invoiceTableData{Invoices: rows}); err != nil {
		return nil, fmt.Errorf("rendering invoice table: %w", err)
	}
	return buf.Bytes(), nil
}

// renderInvoiceFormPage renders the create/edit form with the customer list.
func (ui *WebUI) renderInvoiceFormPage(w http.ResponseWriter, r *http.Request, data invoiceFormData) {
	customers, err := ui.store.ListCustomers(r.Context())
	if err != nil {
		ui.logger.Error("failed to list customers", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data.User = getUserFromContext(r)
	data.CSRFToken = ui.ensureCSRFToken(w, r)
	data.Customers = customers

	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/invoice_form.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		ui.logger.Error("failed to render invoice form", "error", err)
	}
}
