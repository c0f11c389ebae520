// ABOUTME: Invoice store methods for the SQLite backend
// ABOUTME: Insert, lookup, list, in-place update, and delete of invoice rows

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateInvoice inserts a new invoice row.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID,
		inv.CustomerID,
		inv.AmountCents,
		inv.Status,
		inv.Date,
	)
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	s.logger.Debug("created invoice", "id", inv.ID, "customer", inv.CustomerID, "amount_cents", inv.AmountCents)
	return nil
}

// GetInvoice retrieves an invoice by ID.
// Returns ErrNotFound if the invoice doesn't exist.
func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = ?
	`

	var inv Invoice
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.CustomerID,
		&inv.AmountCents,
		&inv.Status,
		&inv.Date,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying invoice: %w", err)
	}

	return &inv, nil
}

// ListInvoices returns invoices ordered newest first.
// A limit of 0 means no limit.
func (s *SQLiteStore) ListInvoices(ctx context.Context, limit int) ([]*Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		ORDER BY date DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.AmountCents, &inv.Status, &inv.Date); err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		invoices = append(invoices, &inv)
	}

	return invoices, rows.Err()
}

// UpdateInvoice updates the customer, amount, and status of the matching row.
// The id and date columns are never touched. A non-matching id is NOT an
// error: the statement simply affects zero rows. Callers that care should
// GetInvoice first.
func (s *SQLiteStore) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = ?, amount = ?, status = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, query,
		inv.CustomerID,
		inv.AmountCents,
		inv.Status,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	s.logger.Debug("updated invoice", "id", inv.ID)
	return nil
}

// DeleteInvoice removes the invoice with the given ID.
func (s *SQLiteStore) DeleteInvoice(ctx context.Context, id string) error {
	query := `DELETE FROM invoices WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	s.logger.Debug("deleted invoice", "id", id)
	return nil
}
