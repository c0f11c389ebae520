// ABOUTME: End-to-end tests for the dashboard routes over httptest
// ABOUTME: Covers the authorization gate, login flow, invoice forms, cache invalidation, and the JSON API

package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ledgerview/ledgerview/internal/actions"
	"github.com/ledgerview/ledgerview/internal/auth"
	"github.com/ledgerview/ledgerview/internal/store"
	"github.com/ledgerview/ledgerview/internal/viewcache"
)

const (
	testEmail    = "user@example.com"
	testPassword = "correct horse battery staple"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
	store  *store.SQLiteStore
}

// newTestApp builds a full dashboard over a temporary SQLite store, with one
// user and one customer seeded. The client carries cookies but does not
// follow redirects, so each handoff is observable.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &store.User{
		ID:           "user-1",
		Email:        testEmail,
		PasswordHash: hash,
		Name:         "Test User",
		CreatedAt:    time.Now(),
	}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	customer := &store.Customer{ID: "cust-1", Name: "Acme Corp", Email: "billing@acme.test"}
	if err := st.CreateCustomer(ctx, customer); err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	cache := viewcache.New(5*time.Minute, 16)
	t.Cleanup(cache.Close)

	verifier, err := auth.NewJWTVerifier([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	act := actions.New(st, cache)
	provider := auth.NewCredentialsProvider(st)
	ui := New(st, act, provider, cache, verifier, Config{SessionDuration: time.Hour})

	mux := http.NewServeMux()
	ui.RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{server: server, client: client, store: st}
}

// get performs a GET and returns the response with the body read.
func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

// postForm performs a POST with form values, adding the CSRF token from the
// cookie jar.
func (a *testApp) postForm(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	if values == nil {
		values = url.Values{}
	}
	if token := a.csrfToken(t); token != "" {
		values.Set("csrf_token", token)
	}
	resp, err := a.client.PostForm(a.server.URL+path, values)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

// csrfToken returns the CSRF cookie value currently in the jar, or "".
func (a *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(a.server.URL)
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// login walks the full login flow and fails the test if it does not land
// on the dashboard.
func (a *testApp) login(t *testing.T) {
	t.Helper()
	a.get(t, "/login") // seeds the CSRF cookie

	resp, _ := a.postForm(t, "/login", url.Values{
		"email":    {testEmail},
		"password": {testPassword},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("login redirect = %q, want %q", loc, "/dashboard")
	}
}

// ============================================================================
// Authorization gate
// ============================================================================

func TestGate_UnauthenticatedDashboardRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/dashboard",
		"/dashboard/invoices",
		"/dashboard/invoices/create",
	} {
		resp, _ := app.get(t, path)
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusSeeOther)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirect = %q, want %q", path, loc, "/login")
		}
	}
}

func TestGate_UnauthenticatedLoginPageAllowed(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Sign in") {
		t.Error("login page missing sign-in form")
	}
}

func TestGate_LoggedInLoginPageRedirectsToDashboard(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.get(t, "/login")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("GET /login status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect = %q, want %q", loc, "/dashboard")
	}
}

func TestGate_LoggedInDashboardAllowed(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, body := app.get(t, "/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /dashboard status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, "Dashboard") {
		t.Error("dashboard page missing heading")
	}
}

// ============================================================================
// Login flow
// ============================================================================

func TestLogin_WrongPasswordShowsMessage(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/login")

	resp, body := app.postForm(t, "/login", url.Values{
		"email":    {testEmail},
		"password": {"wrong"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, actions.MsgInvalidCredentials) {
		t.Errorf("body missing %q", actions.MsgInvalidCredentials)
	}
}

func TestLogin_UnknownEmailShowsSameMessage(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/login")

	resp, body := app.postForm(t, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(body, actions.MsgInvalidCredentials) {
		t.Errorf("body missing %q", actions.MsgInvalidCredentials)
	}
}

func TestLogin_MissingCSRFRejected(t *testing.T) {
	app := newTestApp(t)

	// No prior GET, so no CSRF cookie exists
	resp, err := app.client.PostForm(app.server.URL+"/login", url.Values{
		"email":    {testEmail},
		"password": {testPassword},
	})
	if err != nil {
		t.Fatalf("POST /login error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(body), "Invalid request") {
		t.Error("expected CSRF rejection message on login page")
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.postForm(t, "/logout", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	resp, _ = app.get(t, "/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("post-logout /dashboard status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want %q", loc, "/login")
	}
}

// ============================================================================
// Invoice forms
// ============================================================================

func TestInvoiceCreate_SuccessRedirectsToList(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, _ := app.postForm(t, "/dashboard/invoices/create", url.Values{
		"customerId": {"cust-1"},
		"amount":     {"250.50"},
		"status":     {"pending"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard/invoices" {
		t.Errorf("redirect = %q, want %q", loc, "/dashboard/invoices")
	}

	invoices, err := app.store.ListInvoices(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListInvoices() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoice count = %d, want 1", len(invoices))
	}
	if invoices[0].AmountCents != 25050 {
		t.Errorf("AmountCents = %d, want 25050", invoices[0].AmountCents)
	}
}

func TestInvoiceCreate_InvalidFormRerendersWithErrors(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, body := app.postForm(t, "/dashboard/invoices/create", url.Values{
		"customerId": {""},
		"amount":     {"0"},
		"status":     {""},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	for _, want := range []string{
		actions.MsgSelectCustomer,
		actions.MsgAmountTooSmall,
		actions.MsgSelectStatus,
		actions.MsgMissingFieldsCreate,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	invoices, err := app.store.ListInvoices(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListInvoices() error = %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("invoice count = %d, want 0", len(invoices))
	}
}

func TestInvoiceEdit_UpdatesFieldsKeepsDate(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	inv := &store.Invoice{
		ID:          "inv-1",
		CustomerID:  "cust-1",
		AmountCents: 1000,
		Status:      store.InvoiceStatusPending,
		Date:        "2026-01-15",
	}
	if err := app.store.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	resp, _ := app.postForm(t, "/dashboard/invoices/inv-1/edit", url.Values{
		"customerId": {"cust-1"},
		"amount":     {"99.99"},
		"status":     {"paid"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	got, err := app.store.GetInvoice(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("GetInvoice() error = %v", err)
	}
	if got.AmountCents != 9999 {
		t.Errorf("AmountCents = %d, want 9999", got.AmountCents)
	}
	if got.Status != store.InvoiceStatusPaid {
		t.Errorf("Status = %q, want %q", got.Status, store.InvoiceStatusPaid)
	}
	if got.Date != "2026-01-15" {
		t.Errorf("Date = %q, want unchanged %q", got.Date, "2026-01-15")
	}
}

func TestInvoiceDelete_RedirectsWithMessage(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	inv := &store.Invoice{
		ID:          "inv-1",
		CustomerID:  "cust-1",
		AmountCents: 1000,
		Status:      store.InvoiceStatusPending,
		Date:        "2026-01-15",
	}
	if err := app.store.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	resp, _ := app.postForm(t, "/dashboard/invoices/inv-1/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/dashboard/invoices?msg=") {
		t.Fatalf("redirect = %q, want message on invoice list", loc)
	}
	if !strings.Contains(loc, url.QueryEscape(actions.MsgDeleted)) {
		t.Errorf("redirect %q missing deletion message", loc)
	}

	if _, err := app.store.GetInvoice(context.Background(), "inv-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetInvoice() error = %v, want ErrNotFound", err)
	}
}

func TestInvoiceForm_MissingCSRFForbidden(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	// Drop the CSRF token deliberately
	resp, err := app.client.PostForm(app.server.URL+"/dashboard/invoices/create", url.Values{
		"customerId": {"cust-1"},
		"amount":     {"10"},
		"status":     {"pending"},
		"csrf_token": {"forged"},
	})
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

// ============================================================================
// Invoice list and view cache
// ============================================================================

func TestInvoiceList_ReflectsMutationsThroughCache(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	// Prime the cache with an empty list
	resp, body := app.get(t, "/dashboard/invoices")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if strings.Contains(body, "Acme Corp") {
		t.Fatal("empty list should not mention any customer")
	}

	resp, _ = app.postForm(t, "/dashboard/invoices/create", url.Values{
		"customerId": {"cust-1"},
		"amount":     {"42"},
		"status":     {"paid"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	// The cached fragment was invalidated, so the new invoice appears
	_, body = app.get(t, "/dashboard/invoices")
	if !strings.Contains(body, "Acme Corp") {
		t.Error("invoice list missing new invoice after create")
	}
	if !strings.Contains(body, "$42.00") {
		t.Error("invoice list missing formatted amount")
	}
}

func TestInvoiceList_CachedFragmentCarriesVisitorCSRF(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	inv := &store.Invoice{
		ID:          "inv-1",
		CustomerID:  "cust-1",
		AmountCents: 1000,
		Status:      store.InvoiceStatusPending,
		Date:        "2026-01-15",
	}
	if err := app.store.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	_, body := app.get(t, "/dashboard/invoices")
	if strings.Contains(body, csrfPlaceholder) {
		t.Error("placeholder leaked into the served page")
	}
	if token := app.csrfToken(t); token == "" || !strings.Contains(body, token) {
		t.Error("served page missing the visitor's CSRF token in delete form")
	}
}

// ============================================================================
// JSON API
// ============================================================================

func TestAPIToken_IssuesUsableToken(t *testing.T) {
	app := newTestApp(t)

	payload, _ := json.Marshal(map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	resp, err := http.Post(app.server.URL+"/api/token", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /api/token error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decoding token response: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token in response")
	}

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/invoices error = %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp2.StatusCode, http.StatusOK)
	}
}

func TestAPIToken_BadCredentialsUnauthorized(t *testing.T) {
	app := newTestApp(t)

	payload, _ := json.Marshal(map[string]string{
		"email":    testEmail,
		"password": "wrong",
	})
	resp, err := http.Post(app.server.URL+"/api/token", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /api/token error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestAPIInvoices_NoTokenUnauthorized(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/api/invoices")
	if err != nil {
		t.Fatalf("GET /api/invoices error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
