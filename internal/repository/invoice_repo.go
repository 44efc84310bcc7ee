package repository

import (
	"database/sql"
	"fmt"

	"github.com/ghermet/factureflow/internal/models"
	"go.uber.org/zap"
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `id, file_name, deposit_date, expense_type, amount,
	department_id, procurement_ref, status, is_invalid, age_days`

// Create inserts a new invoice
func (r *InvoiceRepository) Create(tx *sql.Tx, inv *models.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	args := []interface{}{
		inv.ID, inv.FileName, inv.DepositDate, inv.ExpenseType, inv.Amount,
		inv.DepartmentID, inv.ProcurementRef, inv.Status, inv.IsInvalid, inv.AgeDays,
	}

	var err error
	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("id", inv.ID), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by id. Returns nil, nil when absent.
func (r *InvoiceRepository) GetByID(id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	inv, err := scanInvoice(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// List returns all invoices in ingestion order
func (r *InvoiceRepository) List() ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// UpdateStatus sets the status of an invoice
func (r *InvoiceRepository) UpdateStatus(tx *sql.Tx, id string, status models.Status) error {
	query := `UPDATE invoices SET status = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, status, id)
	} else {
		_, err = r.db.Exec(query, status, id)
	}
	if err != nil {
		r.logger.Error("Failed to update invoice status",
			zap.String("id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return nil
}

// UpdateProcurementRef sets the procurement reference code
func (r *InvoiceRepository) UpdateProcurementRef(tx *sql.Tx, id, ref string) error {
	query := `UPDATE invoices SET procurement_ref = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, ref, id)
	} else {
		_, err = r.db.Exec(query, ref, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update procurement ref: %w", err)
	}
	return nil
}

// UpdateAgeDays refreshes the cached age display value
func (r *InvoiceRepository) UpdateAgeDays(id string, days int) error {
	if _, err := r.db.Exec(`UPDATE invoices SET age_days = ? WHERE id = ?`, days, id); err != nil {
		return fmt.Errorf("failed to update age: %w", err)
	}
	return nil
}

// DeleteAll wipes all invoices, used when reseeding fixtures. Comments
// go with them through the cascade.
func (r *InvoiceRepository) DeleteAll(tx *sql.Tx) error {
	var err error
	if tx != nil {
		_, err = tx.Exec(`DELETE FROM invoices`)
	} else {
		_, err = r.db.Exec(`DELETE FROM invoices`)
	}
	if err != nil {
		return fmt.Errorf("failed to wipe invoices: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID, &inv.FileName, &inv.DepositDate, &inv.ExpenseType, &inv.Amount,
		&inv.DepartmentID, &inv.ProcurementRef, &inv.Status, &inv.IsInvalid, &inv.AgeDays,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
