// Package auth provides authentication and authorization for the dashboard.
//
// # Components
//
//   - Authorize: the route-authorization gate, a pure predicate over
//     (is-logged-in, path) returning allow/deny/redirect
//   - CredentialsProvider: email/password verification against the user
//     store with bcrypt and constant-time handling of unknown emails
//   - JWTVerifier: HS256 token generation and verification for the JSON API
//   - APIAuthMiddleware: bearer-token middleware for /api routes
//
// # Route Authorization
//
// Every request is checked before any page renders. Paths under /dashboard
// require a session; public paths redirect logged-in users to the dashboard
// root. The gate carries no state and performs no side effects; the web layer
// turns its decision into a response.
//
// # Errors
//
// ErrInvalidCredentials marks a wrong email or password. *ProviderError wraps
// any other sign-in failure. Callers that receive an error matching neither
// must treat it as unrecognized and propagate it.
package auth
