package repository

import (
	"database/sql"
	"fmt"

	"github.com/ghermet/factureflow/internal/models"
	"go.uber.org/zap"
)

// DepartmentRepository handles department registry database operations
type DepartmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *sql.DB, logger *zap.Logger) *DepartmentRepository {
	return &DepartmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new department
func (r *DepartmentRepository) Create(tx *sql.Tx, dept *models.Department) error {
	query := `INSERT INTO departments (id, name, designation, secret) VALUES (?, ?, ?, ?)`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, dept.ID, dept.Name, dept.Designation, dept.Secret)
	} else {
		_, err = r.db.Exec(query, dept.ID, dept.Name, dept.Designation, dept.Secret)
	}
	if err != nil {
		r.logger.Error("Failed to create department", zap.String("id", dept.ID), zap.Error(err))
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

// GetByID retrieves a department by id. Returns nil, nil when absent.
func (r *DepartmentRepository) GetByID(id string) (*models.Department, error) {
	query := `SELECT id, name, designation, secret FROM departments WHERE id = ?`

	var dept models.Department
	err := r.db.QueryRow(query, id).Scan(&dept.ID, &dept.Name, &dept.Designation, &dept.Secret)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &dept, nil
}

// List returns all departments ordered by id
func (r *DepartmentRepository) List() ([]models.Department, error) {
	rows, err := r.db.Query(`SELECT id, name, designation, secret FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var depts []models.Department
	for rows.Next() {
		var dept models.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Designation, &dept.Secret); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		depts = append(depts, dept)
	}
	return depts, rows.Err()
}

// Update rewrites the mutable fields of a department
func (r *DepartmentRepository) Update(tx *sql.Tx, dept *models.Department) error {
	query := `UPDATE departments SET name = ?, designation = ?, secret = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, dept.Name, dept.Designation, dept.Secret, dept.ID)
	} else {
		_, err = r.db.Exec(query, dept.Name, dept.Designation, dept.Secret, dept.ID)
	}
	if err != nil {
		r.logger.Error("Failed to update department", zap.String("id", dept.ID), zap.Error(err))
		return fmt.Errorf("failed to update department: %w", err)
	}
	return nil
}

// Delete removes a department by id
func (r *DepartmentRepository) Delete(tx *sql.Tx, id string) error {
	query := `DELETE FROM departments WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, id)
	} else {
		_, err = r.db.Exec(query, id)
	}
	if err != nil {
		r.logger.Error("Failed to delete department", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}

// DeleteAll wipes the registry, used when reseeding fixtures
func (r *DepartmentRepository) DeleteAll(tx *sql.Tx) error {
	var err error
	if tx != nil {
		_, err = tx.Exec(`DELETE FROM departments`)
	} else {
		_, err = r.db.Exec(`DELETE FROM departments`)
	}
	if err != nil {
		return fmt.Errorf("failed to wipe departments: %w", err)
	}
	return nil
}
