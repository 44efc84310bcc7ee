package repository

import (
	"database/sql"
	"fmt"

	"github.com/ghermet/factureflow/internal/models"
	"go.uber.org/zap"
)

// CommentRepository handles invoice comment database operations.
// Comments are append-only: there is no update or delete.
type CommentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB, logger *zap.Logger) *CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a comment to an invoice
func (r *CommentRepository) Create(tx *sql.Tx, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, invoice_id, author, text, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	var err error
	if tx != nil {
		_, err = tx.Exec(query, comment.ID, comment.InvoiceID, comment.Author, comment.Text, comment.Timestamp)
	} else {
		_, err = r.db.Exec(query, comment.ID, comment.InvoiceID, comment.Author, comment.Text, comment.Timestamp)
	}
	if err != nil {
		r.logger.Error("Failed to create comment",
			zap.String("invoice_id", comment.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListByInvoice returns an invoice's comments in append order
func (r *CommentRepository) ListByInvoice(invoiceID string) ([]models.Comment, error) {
	query := `
		SELECT id, invoice_id, author, text, timestamp
		FROM comments
		WHERE invoice_id = ?
		ORDER BY timestamp, id
	`

	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.InvoiceID, &c.Author, &c.Text, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
