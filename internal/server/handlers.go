package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ghermet/factureflow/internal/export"
	"github.com/ghermet/factureflow/internal/fixtures"
	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/registry"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/internal/session"
	"github.com/ghermet/factureflow/internal/workflow"
	"go.uber.org/zap"
)

// Handler wires the workflow operations to HTTP.
type Handler struct {
	sessions    *session.Manager
	engine      *workflow.Engine
	registry    *registry.Service
	invoiceRepo *repository.InvoiceRepository
	commentRepo *repository.CommentRepository
	seeder      *fixtures.Seeder
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	sessions *session.Manager,
	engine *workflow.Engine,
	reg *registry.Service,
	invoiceRepo *repository.InvoiceRepository,
	commentRepo *repository.CommentRepository,
	seeder *fixtures.Seeder,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions:    sessions,
		engine:      engine,
		registry:    reg,
		invoiceRepo: invoiceRepo,
		commentRepo: commentRepo,
		seeder:      seeder,
		logger:      logger,
	}
}

// Login exchanges department credentials for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		DepartmentID string `json:"department_id" binding:"required"`
		Secret       string `json:"secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department_id and secret are required"})
		return
	}

	user, token, err := h.sessions.Login(req.DepartmentID, req.Secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": session.ErrBadCredentials.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout ends the session. Tokens are stateless, so this is a log
// point and a signal for the client to discard its token.
func (h *Handler) Logout(c *gin.Context) {
	user := currentUser(c)
	h.logger.Info("Logout", zap.String("department", user.DepartmentID))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ListInvoices returns the dashboard projection for the acting role,
// with the permitted actions attached to each invoice.
func (h *Handler) ListInvoices(c *gin.Context) {
	user := currentUser(c)

	all, err := h.invoiceRepo.List()
	if err != nil {
		h.fail(c, err)
		return
	}

	visible := workflow.Dashboard(all, user)

	type invoiceWithActions struct {
		models.Invoice
		Actions []workflow.Action `json:"actions"`
	}
	out := make([]invoiceWithActions, 0, len(visible))
	for _, inv := range visible {
		inv := inv
		out = append(out, invoiceWithActions{
			Invoice: inv,
			Actions: h.engine.PermittedActions(&inv, user),
		})
	}

	c.JSON(http.StatusOK, gin.H{"invoices": out})
}

// InvoiceStats returns the dashboard counters.
func (h *Handler) InvoiceStats(c *gin.Context) {
	user := currentUser(c)

	all, err := h.invoiceRepo.List()
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow.DashboardStats(workflow.Dashboard(all, user)))
}

// History returns the audit projection through the request filters.
func (h *Handler) History(c *gin.Context) {
	user := currentUser(c)

	all, err := h.invoiceRepo.List()
	if err != nil {
		h.fail(c, err)
		return
	}

	matched := workflow.History(all, user, historyFilter(c))
	now := time.Now()
	type historyRow struct {
		models.Invoice
		AgeDays int `json:"age_days"`
	}
	out := make([]historyRow, 0, len(matched))
	for _, inv := range matched {
		out = append(out, historyRow{Invoice: inv, AgeDays: workflow.AgeDays(inv, now)})
	}

	c.JSON(http.StatusOK, gin.H{"invoices": out})
}

// ExportHistory streams the filtered audit view as an xlsx workbook.
func (h *Handler) ExportHistory(c *gin.Context) {
	user := currentUser(c)

	all, err := h.invoiceRepo.List()
	if err != nil {
		h.fail(c, err)
		return
	}

	matched := workflow.History(all, user, historyFilter(c))

	book, err := export.HistoryWorkbook(matched, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	defer book.Close()

	fileName := fmt.Sprintf("historique-factures-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := book.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream export", zap.Error(err))
	}
}

func historyFilter(c *gin.Context) workflow.HistoryFilter {
	return workflow.HistoryFilter{
		FileName:     c.Query("file_name"),
		DepartmentID: c.Query("department_id"),
		ExpenseType:  models.ExpenseCategory(c.Query("expense_type")),
		Amount:       c.Query("amount"),
		Status:       models.Status(c.Query("status")),
	}
}

// UpdateStatus applies a pipeline transition.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req struct {
		Target  models.Status `json:"target" binding:"required"`
		Comment string        `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target status is required"})
		return
	}

	inv, err := h.engine.UpdateStatus(c.Param("id"), req.Target, req.Comment, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// UpdateRef sets the procurement reference code.
func (h *Handler) UpdateRef(c *gin.Context) {
	var req struct {
		Ref string `json:"ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ref is required"})
		return
	}

	if err := h.engine.UpdateProcurementRef(c.Param("id"), req.Ref, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reference updated"})
}

// AddComment appends a comment to an invoice.
func (h *Handler) AddComment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	comment, err := h.engine.AddComment(c.Param("id"), req.Text, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments returns an invoice's comment thread in append order.
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.commentRepo.ListByInvoice(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Revert moves a terminal invoice back to PendingMandate.
func (h *Handler) Revert(c *gin.Context) {
	var req struct {
		ConfirmSecret string `json:"confirm_secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirm_secret is required"})
		return
	}

	if err := h.engine.RevertToPendingMandate(c.Param("id"), req.ConfirmSecret, currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice reverted to pending mandate"})
}

// MarkProcessed closes out a rejected invoice.
func (h *Handler) MarkProcessed(c *gin.Context) {
	if err := h.engine.MarkAsProcessed(c.Param("id"), currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invoice marked as processed"})
}

// ListDepartments returns the registry.
func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.registry.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": depts})
}

type departmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Designation string `json:"designation" binding:"required"`
	Secret      string `json:"secret" binding:"required"`
}

// AddDepartment registers a new department.
func (h *Handler) AddDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, designation and secret are required"})
		return
	}

	dept, err := h.registry.Add(req.Name, req.Designation, req.Secret, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"department": dept})
}

// UpdateDepartment edits a department.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, designation and secret are required"})
		return
	}

	dept, err := h.registry.Update(c.Param("id"), req.Name, req.Designation, req.Secret, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"department": dept})
}

// DeleteDepartment removes a department.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	if err := h.registry.Delete(c.Param("id"), currentUser(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}

// Refresh discards all in-memory mutations and reloads the fixtures.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.seeder.Seed(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "data reloaded"})
}

// fail maps engine and registry refusals onto the HTTP error
// taxonomy: denied actions are 4xx, nothing here is fatal.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, registry.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrNotPermitted),
		errors.Is(err, workflow.ErrBadConfirmSecret),
		errors.Is(err, registry.ErrNotPermitted),
		errors.Is(err, registry.ErrProtected):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrCommentRequired),
		errors.Is(err, workflow.ErrEmptyComment),
		errors.Is(err, workflow.ErrInvalidInvoice),
		errors.Is(err, workflow.ErrRefTooLong),
		errors.Is(err, workflow.ErrUnknownStatus),
		errors.Is(err, registry.ErrExists),
		errors.Is(err, registry.ErrIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
