// ABOUTME: JSON API handlers for token issuance and invoice listing
// ABOUTME: Bearer-token authenticated, separate from the session-based page routes

package webui

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ledgerview/ledgerview/internal/actions"
	"github.com/ledgerview/ledgerview/internal/auth"
)

// TokenService issues and verifies API bearer tokens.
type TokenService interface {
	auth.TokenVerifier
	Generate(userID string, expiresIn time.Duration) (string, error)
}

// apiTokenTTL is how long issued API tokens are valid.
const apiTokenTTL = time.Hour

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type apiInvoice struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
	Date        string `json:"date"`
}

// writeJSON writes v as a JSON response with the given status code.
func (ui *WebUI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ui.logger.Error("failed to encode JSON response", "error", err)
	}
}

// handleAPIToken exchanges email/password credentials for a bearer token.
func (ui *WebUI) handleAPIToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ui.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		ui.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
		return
	}

	user, msg, err := actions.Authenticate(r.Context(), ui.provider, req.Email, req.Password)
	if err != nil {
		ui.logger.Error("token issuance failed", "error", err)
		ui.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if msg != "" {
		ui.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
		return
	}

	token, err := ui.verifier.Generate(user.ID, apiTokenTTL)
	if err != nil {
		ui.logger.Error("failed to generate token", "error", err)
		ui.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	ui.writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int64(apiTokenTTL.Seconds()),
	})
}

// handleAPIInvoices returns the invoice list as JSON. The auth middleware has
// already validated the bearer token.
func (ui *WebUI) handleAPIInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := ui.store.ListInvoices(r.Context(), 0)
	if err != nil {
		ui.logger.Error("failed to list invoices", "error", err, "user_id", auth.UserIDFromContext(r.Context()))
		ui.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	out := make([]apiInvoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, apiInvoice{
			ID:          inv.ID,
			CustomerID:  inv.CustomerID,
			AmountCents: inv.AmountCents,
			Status:      inv.Status,
			Date:        inv.Date,
		})
	}

	ui.writeJSON(w, http.StatusOK, map[string]any{"invoices": out})
}
