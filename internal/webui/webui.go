// ABOUTME: Dashboard web UI package for ledgerview
// ABOUTME: Provides the login flow, session management, route gate, and invoice pages

package webui

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerview/ledgerview/internal/actions"
	"github.com/ledgerview/ledgerview/internal/auth"
	"github.com/ledgerview/ledgerview/internal/store"
	"github.com/ledgerview/ledgerview/internal/viewcache"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "ledgerview_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "ledgerview_csrf"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userContextKey contextKey = "dashboard_user"

// Config holds web UI configuration
type Config struct {
	// SessionDuration is how long sessions last
	SessionDuration time.Duration
}

// WebUI handles dashboard routes, sessions, and the route-authorization gate
type WebUI struct {
	store    store.Store
	actions  *actions.Actions
	provider actions.SignInProvider
	cache    *viewcache.Cache
	verifier TokenService
	config   Config
	logger   *slog.Logger
}

// New creates a new WebUI handler. verifier may be nil, which disables the
// JSON API token routes.
func New(fullStore store.Store, act *actions.Actions, provider actions.SignInProvider, cache *viewcache.Cache, verifier TokenService, cfg Config) *WebUI {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 7 * 24 * time.Hour
	}
	return &WebUI{
		store:    fullStore,
		actions:  act,
		provider: provider,
		cache:    cache,
		verifier: verifier,
		config:   cfg,
		logger:   slog.Default().With("component", "webui"),
	}
}

// RegisterRoutes registers all dashboard routes on the given mux
func (ui *WebUI) RegisterRoutes(mux *http.ServeMux) {
	// Page routes, all behind the route-authorization gate
	mux.HandleFunc("GET /{$}", ui.withGate(ui.handleIndex))
	mux.HandleFunc("GET /login", ui.withGate(ui.handleLoginPage))
	mux.HandleFunc("POST /login", ui.withGate(ui.handleLogin))

	// Logout is a mutation, not a page render; it stays outside the gate so a
	// logged-in user is not bounced to the dashboard before the session clears
	mux.HandleFunc("POST /logout", ui.handleLogout)

	mux.HandleFunc("GET /dashboard", ui.withGate(ui.handleDashboard))
	mux.HandleFunc("GET /dashboard/invoices", ui.withGate(ui.handleInvoicesPage))
	mux.HandleFunc("GET /dashboard/invoices/create", ui.withGate(ui.handleInvoiceCreatePage))
	mux.HandleFunc("POST /dashboard/invoices/create", ui.withGate(ui.handleInvoiceCreate))
	mux.HandleFunc("GET /dashboard/invoices/{id}/edit", ui.withGate(ui.handleInvoiceEditPage))
	mux.HandleFunc("POST /dashboard/invoices/{id}/edit", ui.withGate(ui.handleInvoiceEdit))
	mux.HandleFunc("POST /dashboard/invoices/{id}/delete", ui.withGate(ui.handleInvoiceDelete))

	// JSON API routes use bearer tokens instead of the session gate
	if ui.verifier != nil {
		mux.HandleFunc("POST /api/token", ui.handleAPIToken)
		apiAuth := auth.APIAuthMiddleware(ui.store, ui.verifier)
		mux.Handle("GET /api/invoices", apiAuth(http.HandlerFunc(ui.handleAPIInvoices)))
	}

	ui.logger.Info("dashboard routes registered")
}

// withGate evaluates the route-authorization gate before any page renders.
// Deny becomes a redirect to the login page; an authenticated user lands in
// the request context for handlers that need it.
func (ui *WebUI) withGate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ui.getUserFromSession(r)
		loggedIn := err == nil

		decision, target := auth.Authorize(loggedIn, r.URL.Path)
		switch decision {
		case auth.DecisionDeny:
			http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
			return
		case auth.DecisionRedirect:
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		if loggedIn {
			ctx := context.WithValue(r.Context(), userContextKey, user)
			r = r.WithContext(ctx)
		}
		next(w, r)
	}
}

// getUserFromSession retrieves the authenticated user from the session cookie
func (ui *WebUI) getUserFromSession(r *http.Request) (*store.User, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	session, err := ui.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	user, err := ui.store.GetUser(r.Context(), session.UserID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// getUserFromContext retrieves the authenticated user from the request context
func getUserFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

// generateSecureToken returns a URL-safe random token of n bytes entropy.
func generateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ensureCSRFToken generates a CSRF token if not present and returns it.
func (ui *WebUI) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		ui.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return token
}

// validateCSRF checks the CSRF token from form against cookie
func (ui *WebUI) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	return formToken != "" && formToken == cookie.Value
}

// createSession creates a new session for a user and sets the cookie
func (ui *WebUI) createSession(w http.ResponseWriter, r *http.Request, userID string) error {
	sessionID, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	session := &store.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ui.config.SessionDuration),
	}

	if err := ui.store.CreateSession(r.Context(), session); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// handleIndex sends visitors to the login page. The gate has already
// redirected logged-in users to the dashboard.
func (ui *WebUI) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// handleLoginPage renders the login page
func (ui *WebUI) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	csrfToken := ui.ensureCSRFToken(w, r)
	ui.renderLoginPage(w, "", csrfToken)
}

// handleLogin processes the login form submission
func (ui *WebUI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		csrfToken := ui.ensureCSRFToken(w, r)
		ui.renderLoginPage(w, "Invalid form data", csrfToken)
		return
	}

	if !ui.validateCSRF(r) {
		csrfToken := ui.ensureCSRFToken(w, r)
		ui.renderLoginPage(w, "Invalid request, please try again", csrfToken)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		csrfToken := ui.ensureCSRFToken(w, r)
		ui.renderLoginPage(w, "Email and password required", csrfToken)
		return
	}

	user, msg, err := actions.Authenticate(r.Context(), ui.provider, email, password)
	if err != nil {
		// Unrecognized faults are not converted to sign-in messages
		ui.logger.Error("sign-in failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if msg != "" {
		csrfToken := ui.ensureCSRFToken(w, r)
		ui.renderLoginPage(w, msg, csrfToken)
		return
	}

	if err := ui.createSession(w, r, user.ID); err != nil {
		ui.logger.Error("failed to create session", "error", err)
		csrfToken := ui.ensureCSRFToken(w, r)
		ui.renderLoginPage(w, actions.MsgSignInFailed, csrfToken)
		return
	}

	ui.logger.Info("login successful", "email", email)
	http.Redirect(w, r, auth.DashboardPath, http.StatusSeeOther)
}

// handleLogout logs out the current user
func (ui *WebUI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		if !ui.validateCSRF(r) {
			ui.logger.Warn("logout request with invalid CSRF token")
		}
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		_ = ui.store.DeleteSession(r.Context(), cookie.Value)
	}

	// Clear session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	// Clear CSRF cookie
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// handleDashboard renders the dashboard landing page with invoice totals.
func (ui *WebUI) handleDashboard(w http.ResponseWriter, r *http.Request) {
	invoices, err := ui.store.ListInvoices(r.Context(), 0)
	if err != nil {
		ui.logger.Error("failed to list invoices", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var paidCents, pendingCents int64
	for _, inv := range invoices {
		switch inv.Status {
		case store.InvoiceStatusPaid:
			paidCents += inv.AmountCents
		case store.InvoiceStatusPending:
			pendingCents += inv.AmountCents
		}
	}

	csrfToken := ui.ensureCSRFToken(w, r)
	ui.renderDashboard(w, dashboardData{
		Title:        "Dashboard",
		User:         getUserFromContext(r),
		CSRFToken:    csrfToken,
		InvoiceCount: len(invoices),
		PaidTotal:    formatCents(paidCents),
		PendingTotal: formatCents(pendingCents),
	})
}

// handleInvoicesPage renders the invoice list. The table fragment is served
// from the view cache; a miss recomputes it from the store. Mutating actions
// invalidate this path.
func (ui *WebUI) handleInvoicesPage(w http.ResponseWriter, r *http.Request) {
	table, ok := ui.cache.Get(actions.InvoiceListPath)
	if !ok {
		rendered, err := ui.renderInvoiceTable(r.Context())
		if err != nil {
			ui.logger.Error("failed to render invoice table", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		ui.cache.Put(actions.InvoiceListPath, rendered)
		table = rendered
	}

	csrfToken := ui.ensureCSRFToken(w, r)
	ui.renderInvoicesPage(w, invoicesPageData{
		Title:     "Invoices",
		User:      getUserFromContext(r),
		CSRFToken: csrfToken,
		Table:     table,
		Message:   r.URL.Query().Get("msg"),
	})
}

// handleInvoiceCreatePage renders the empty invoice form.
func (ui *WebUI) handleInvoiceCreatePage(w http.ResponseWriter, r *http.Request) {
	ui.renderInvoiceFormPage(w, r, invoiceFormData{
		Title:  "Create Invoice",
		Action: "/dashboard/invoices/create",
		Status: store.InvoiceStatusPending,
	})
}

// handleInvoiceCreate processes the create form submission.
func (ui *WebUI) handleInvoiceCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := ui.parseInvoiceForm(w, r)
	if !ok {
		return
	}

	result := ui.actions.CreateInvoice(r.Context(), form)
	if result.RedirectTo != "" {
		http.Redirect(w, r, result.RedirectTo, http.StatusSeeOther)
		return
	}

	ui.renderInvoiceFormPage(w, r, invoiceFormData{
		Title:      "Create Invoice",
		Action:     "/dashboard/invoices/create",
		CustomerID: form.CustomerID,
		Amount:     form.Amount,
		Status:     form.Status,
		Errors:     result.Errors,
		Message:    result.Message,
	})
}

// handleInvoiceEditPage renders the form prefilled with an existing invoice.
func (ui *WebUI) handleInvoiceEditPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	inv, err := ui.store.GetInvoice(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		ui.logger.Error("failed to load invoice", "error", err, "id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ui.renderInvoiceFormPage(w, r, invoiceFormData{
		Title:      "Edit Invoice",
		Action:     "/dashboard/invoices/" + id + "/edit",
		CustomerID: inv.CustomerID,
		Amount:     formatCents(inv.AmountCents),
		Status:     inv.Status,
	})
}

// handleInvoiceEdit processes the edit form submission.
func (ui *WebUI) handleInvoiceEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	form, ok := ui.parseInvoiceForm(w, r)
	if !ok {
		return
	}

	result := ui.actions.UpdateInvoice(r.Context(), id, form)
	if result.RedirectTo != "" {
		http.Redirect(w, r, result.RedirectTo, http.StatusSeeOther)
		return
	}

	ui.renderInvoiceFormPage(w, r, invoiceFormData{
		Title:      "Edit Invoice",
		Action:     "/dashboard/invoices/" + id + "/edit",
		CustomerID: form.CustomerID,
		Amount:     form.Amount,
		Status:     form.Status,
		Errors:     result.Errors,
		Message:    result.Message,
	})
}

// handleInvoiceDelete processes a delete from the invoice list.
func (ui *WebUI) handleInvoiceDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !ui.validateCSRF(r) {
		http.Redirect(w, r, actions.InvoiceListPath, http.StatusSeeOther)
		return
	}

	result := ui.actions.DeleteInvoice(r.Context(), r.PathValue("id"))

	// Delete returns a message, not a redirect; surface it on the list page
	http.Redirect(w, r, actions.InvoiceListPath+"?msg="+url.QueryEscape(result.Message), http.StatusSeeOther)
}

// parseInvoiceForm parses and CSRF-checks a create/edit submission. On a bad
// request it writes the response itself and returns ok=false.
func (ui *WebUI) parseInvoiceForm(w http.ResponseWriter, r *http.Request) (actions.InvoiceForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return actions.InvoiceForm{}, false
	}
	if !ui.validateCSRF(r) {
		http.Error(w, "invalid request", http.StatusForbidden)
		return actions.InvoiceForm{}, false
	}
	return actions.InvoiceForm{
		CustomerID: r.FormValue("customerId"),
		Amount:     r.FormValue("amount"),
		Status:     r.FormValue("status"),
	}, true
}
