// Package store provides persistent storage for the dashboard using SQLite.
//
// # Architecture
//
// A single Store interface covers all persistence; SQLiteStore implements it.
// The store owns record lifetime: the application holds no in-memory copy of
// any row across requests.
//
// # Data Models
//
//   - Invoice: billing record (customer, amount in integer cents, status, date)
//   - Customer: billable party referenced by invoices
//   - User: dashboard account with bcrypt password hash
//   - Session: cookie-backed browser session
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on open. Each statement runs as its own
// implicit transaction; no isolation tuning is done here.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrEmailExists: User email already taken
//   - ErrSessionNotFound: Session missing or expired
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for integration tests.
package store
