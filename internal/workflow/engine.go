// Package workflow implements the invoice approval pipeline: a fixed
// progression Submitted → ProcurementApproved → PendingMandate →
// Mandated with rejection branches, gated per role and per department.
package workflow

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// System comment texts appended by the finance escape hatches.
const (
	revertComment  = "Statut précédent restauré par les Finances."
	processComment = "Facture marquée comme traitée par les Finances."
)

// Engine applies role-gated status transitions to invoices. All rule
// decisions go through the transition table in rules.go; the engine
// adds the side effects (comment appends, ref writes) and atomicity.
type Engine struct {
	db           *database.DB
	invoiceRepo  *repository.InvoiceRepository
	commentRepo  *repository.CommentRepository
	revertSecret string
	logger       *zap.Logger
	now          func() time.Time
}

// NewEngine creates a new workflow engine
func NewEngine(
	db *database.DB,
	invoiceRepo *repository.InvoiceRepository,
	commentRepo *repository.CommentRepository,
	revertSecret string,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:           db,
		invoiceRepo:  invoiceRepo,
		commentRepo:  commentRepo,
		revertSecret: revertSecret,
		logger:       logger,
		now:          time.Now,
	}
}

// PermittedActions returns the transitions user may currently apply to
// the invoice. An empty result means the invoice is not actionable by
// this user.
func (e *Engine) PermittedActions(inv *models.Invoice, user models.CurrentUser) []Action {
	return permittedActions(inv, user)
}

// UpdateStatus moves an invoice to target on behalf of user. A
// rejection target additionally appends the rationale comment; the
// status change and the comment succeed or fail together.
func (e *Engine) UpdateStatus(invoiceID string, target models.Status, comment string, user models.CurrentUser) (*models.Invoice, error) {
	if !target.Valid() {
		return nil, ErrUnknownStatus
	}

	inv, err := e.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if inv.IsInvalid {
		return nil, ErrInvalidInvoice
	}

	action, ok := findAction(inv, user, target)
	if !ok {
		e.logger.Warn("Transition refused",
			zap.String("invoice_id", invoiceID),
			zap.String("from", string(inv.Status)),
			zap.String("to", string(target)),
			zap.String("role", string(user.Role)),
			zap.String("department", user.DepartmentID))
		return nil, ErrNotPermitted
	}

	comment = strings.TrimSpace(comment)
	if action.CommentRequired && comment == "" {
		return nil, ErrCommentRequired
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.invoiceRepo.UpdateStatus(tx, invoiceID, target); err != nil {
			return err
		}
		if comment != "" {
			if err := e.appendComment(tx, invoiceID, user.Name, comment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply transition: %w", err)
	}

	e.logger.Info("Invoice status updated",
		zap.String("invoice_id", invoiceID),
		zap.String("from", string(inv.Status)),
		zap.String("to", string(target)),
		zap.String("actor", user.DepartmentID))

	inv.Status = target
	return inv, nil
}

// UpdateProcurementRef sets the reference code on a submitted invoice.
// Only the procurement role may do this, and only before validation.
func (e *Engine) UpdateProcurementRef(invoiceID, ref string, user models.CurrentUser) error {
	if user.Role != models.RoleProcurement {
		return ErrNotPermitted
	}
	if len(ref) > models.MaxProcurementRefLen {
		return ErrRefTooLong
	}

	inv, err := e.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.IsInvalid {
		return ErrInvalidInvoice
	}
	if inv.Status != models.StatusSubmitted {
		return ErrNotPermitted
	}

	return e.invoiceRepo.UpdateProcurementRef(nil, invoiceID, ref)
}

// AddComment appends a free comment to an invoice on behalf of user.
func (e *Engine) AddComment(invoiceID, text string, user models.CurrentUser) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	inv, err := e.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		Author:    user.Name,
		Text:      text,
		Timestamp: e.now(),
	}
	if err := e.commentRepo.Create(nil, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// RevertToPendingMandate is a finance-only escape hatch for correcting
// a mis-mandated invoice: it moves a terminal invoice back to
// PendingMandate. The caller must supply the confirmation secret.
func (e *Engine) RevertToPendingMandate(invoiceID, confirmSecret string, user models.CurrentUser) error {
	if user.Role != models.RoleFinance {
		return ErrNotPermitted
	}
	if confirmSecret != e.revertSecret {
		return ErrBadConfirmSecret
	}

	inv, err := e.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.Status != models.StatusMandated && inv.Status != models.StatusProcessed {
		return ErrNotPermitted
	}

	return e.applyWithSystemComment(inv, models.StatusPendingMandate, revertComment, user)
}

// MarkAsProcessed closes out a stalled rejected invoice. Finance only.
func (e *Engine) MarkAsProcessed(invoiceID string, user models.CurrentUser) error {
	if user.Role != models.RoleFinance {
		return ErrNotPermitted
	}

	inv, err := e.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.Status != models.StatusRejectedByProcurement && inv.Status != models.StatusRejectedByService {
		return ErrNotPermitted
	}

	return e.applyWithSystemComment(inv, models.StatusProcessed, processComment, user)
}

func (e *Engine) applyWithSystemComment(inv *models.Invoice, target models.Status, text string, user models.CurrentUser) error {
	err := e.db.WithTransaction(func(tx *sql.Tx) error {
		if err := e.invoiceRepo.UpdateStatus(tx, inv.ID, target); err != nil {
			return err
		}
		return e.appendComment(tx, inv.ID, user.Name, text)
	})
	if err != nil {
		return fmt.Errorf("failed to apply transition: %w", err)
	}

	e.logger.Info("Invoice status overridden",
		zap.String("invoice_id", inv.ID),
		zap.String("from", string(inv.Status)),
		zap.String("to", string(target)),
		zap.String("actor", user.DepartmentID))
	return nil
}

func (e *Engine) appendComment(tx *sql.Tx, invoiceID, author, text string) error {
	return e.commentRepo.Create(tx, &models.Comment{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		Author:    author,
		Text:      text,
		Timestamp: e.now(),
	})
}
