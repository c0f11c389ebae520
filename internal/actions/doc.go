// Package actions implements the server-side form actions for the dashboard.
//
// # Overview
//
// Each action is a single validate-then-persist-then-intent sequence, terminal
// within one request:
//
//   - CreateInvoice: validate, insert, invalidate cached list, redirect
//   - UpdateInvoice: validate, update by id, invalidate cached list, redirect
//   - DeleteInvoice: invalidate cached list, delete by id, message
//   - Authenticate: delegate a credentials sign-in, map failures to messages
//
// # Results
//
// Actions return a Result value instead of performing framework side effects:
// a redirect target, a banner message, or a field-error map for re-rendering
// the form. The web layer turns the intent into a response, which keeps the
// core testable without a running server.
//
// # Failure policy
//
// Validation and storage faults are always caught and converted to a
// structured Result. Storage faults are not distinguished by kind; every one
// becomes the same generic banner per action. Only authentication faults the
// sign-in action does not recognize propagate as errors. Nothing is retried.
package actions
