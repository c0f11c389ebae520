// ABOUTME: Store interface and data types for ledgerview persistence
// ABOUTME: Defines Invoice, Customer, User, Session structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when trying to create a user with an existing email
var ErrEmailExists = errors.New("email already exists")

// ErrSessionNotFound is returned when a session doesn't exist or is expired
var ErrSessionNotFound = errors.New("session not found")

// Invoice status constants
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Invoice represents a billing record. AmountCents holds the monetary amount
// as integer cents; Date is a calendar date in YYYY-MM-DD form, assigned at
// creation and never changed by updates.
type Invoice struct {
	ID          string
	CustomerID  string
	AmountCents int64
	Status      string // "pending" or "paid"
	Date        string
}

// Customer represents a billable party referenced by invoices.
type Customer struct {
	ID    string
	Name  string
	Email string
}

// User represents a person who can sign in to the dashboard.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	CreatedAt    time.Time
}

// Session represents an authenticated browser session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store defines the interface for dashboard persistence
type Store interface {
	// Invoices
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, limit int) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id string) error

	// Customers
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int, error)

	// Sessions
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) error

	// Close releases the underlying database handle
	Close() error
}
