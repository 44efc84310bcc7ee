package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ghermet/factureflow/internal/session"
	"go.uber.org/zap"
)

// NewRouter assembles the gin router with all workflow routes.
func NewRouter(h *Handler, sessions *session.Manager, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "factureflow",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	api.POST("/login", h.Login)

	authed := api.Group("")
	authed.Use(authMiddleware(sessions))
	{
		authed.POST("/logout", h.Logout)

		authed.GET("/invoices", h.ListInvoices)
		authed.GET("/invoices/stats", h.InvoiceStats)
		authed.POST("/invoices/:id/status", h.UpdateStatus)
		authed.POST("/invoices/:id/ref", h.UpdateRef)
		authed.GET("/invoices/:id/comments", h.ListComments)
		authed.POST("/invoices/:id/comments", h.AddComment)
		authed.POST("/invoices/:id/revert", h.Revert)
		authed.POST("/invoices/:id/process", h.MarkProcessed)

		authed.GET("/history", h.History)
		authed.GET("/history/export", h.ExportHistory)

		authed.GET("/departments", h.ListDepartments)
		authed.POST("/departments", h.AddDepartment)
		authed.PUT("/departments/:id", h.UpdateDepartment)
		authed.DELETE("/departments/:id", h.DeleteDepartment)

		authed.POST("/refresh", h.Refresh)
	}

	return router
}
