// ABOUTME: Route-authorization gate evaluated before any page renders
// ABOUTME: Pure predicate over (is-logged-in, requested path), no state or side effects

package auth

import "strings"

// ProtectedPrefix is the path prefix that requires authentication.
const ProtectedPrefix = "/dashboard"

// DashboardPath is where authenticated users land.
const DashboardPath = "/dashboard"

// LoginPath is where unauthenticated users are sent to sign in.
const LoginPath = "/login"

// Decision is the outcome of a route-authorization check.
type Decision int

const (
	// DecisionAllow lets the request through to the handler.
	DecisionAllow Decision = iota
	// DecisionDeny blocks the request; the web layer redirects to the login page.
	DecisionDeny
	// DecisionRedirect sends the request to another path.
	DecisionRedirect
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Authorize decides whether a request may proceed. Paths under the protected
// prefix are allowed only for logged-in users. On public paths, a logged-in
// user is redirected to the dashboard root. The returned target is non-empty
// only for DecisionRedirect.
func Authorize(loggedIn bool, path string) (Decision, string) {
	if strings.HasPrefix(path, ProtectedPrefix) {
		if loggedIn {
			return DecisionAllow, ""
		}
		return DecisionDeny, ""
	}
	if loggedIn {
		return DecisionRedirect, DashboardPath
	}
	return DecisionAllow, ""
}
