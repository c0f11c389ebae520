// ABOUTME: Customer store methods for the SQLite backend
// ABOUTME: Customers are referenced by invoices and populate the form's select list

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateCustomer inserts a new customer row.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, c *Customer) error {
	query := `INSERT INTO customers (id, name, email) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.Email); err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}

	s.logger.Debug("created customer", "id", c.ID, "name", c.Name)
	return nil
}

// GetCustomer retrieves a customer by ID.
// Returns ErrNotFound if the customer doesn't exist.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	query := `SELECT id, name, email FROM customers WHERE id = ?`

	var c Customer
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}

	return &c, nil
}

// ListCustomers returns all customers ordered by name.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	query := `SELECT id, name, email FROM customers ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, &c)
	}

	return customers, rows.Err()
}
