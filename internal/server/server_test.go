package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ghermet/factureflow/internal/auth"
	"github.com/ghermet/factureflow/internal/fixtures"
	"github.com/ghermet/factureflow/internal/registry"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/internal/session"
	"github.com/ghermet/factureflow/internal/workflow"
	"github.com/ghermet/factureflow/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations())

	deptRepo := repository.NewDepartmentRepository(db.DB, logger)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, logger)
	commentRepo := repository.NewCommentRepository(db.DB, logger)

	seeder := fixtures.NewSeeder(db, deptRepo, invoiceRepo, commentRepo, logger)
	require.NoError(t, seeder.Seed())

	sessions := session.NewManager(deptRepo, auth.PlainVerifier{}, "test-signing-key", time.Hour, logger)
	engine := workflow.NewEngine(db, invoiceRepo, commentRepo, "Daf59", logger)
	reg := registry.NewService(deptRepo, logger)

	h := NewHandler(sessions, engine, reg, invoiceRepo, commentRepo, seeder, logger)
	return NewRouter(h, sessions, logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine, department string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/login", "", gin.H{
		"department_id": department,
		"secret":        "1234",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/login", "", gin.H{
		"department_id": "FINANCES",
		"secret":        "1234",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login", "", gin.H{
		"department_id": "FINANCES",
		"secret":        "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/invoices", "/api/v1/history", "/api/v1/departments"} {
		w := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestDashboardPerRole(t *testing.T) {
	router := newTestRouter(t)

	var resp struct {
		Invoices []struct {
			ID           string `json:"id"`
			DepartmentID string `json:"department_id"`
		} `json:"invoices"`
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/invoices", login(t, router, "COMMANDE PUBLIQUE"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, inv := range resp.Invoices {
		assert.NotContains(t, []string{"CCAS", "SAAD", "DRE", "SGFINANCES"}, inv.DepartmentID, inv.ID)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/invoices", login(t, router, "SGSPORTS"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, inv := range resp.Invoices {
		assert.Equal(t, "SGSPORTS", inv.DepartmentID)
	}
}

func TestStatusTransitionEndpoint(t *testing.T) {
	router := newTestRouter(t)
	procurement := login(t, router, "COMMANDE PUBLIQUE")

	// INV-0001 is a submitted SGINFORMAT invoice.
	w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0001/status", procurement, gin.H{
		"target": "PROCUREMENT_APPROVED",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Rejection without a comment is refused.
	w = doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0002/status", procurement, gin.H{
		"target": "REJECTED_PROCUREMENT",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A service role cannot drive procurement transitions.
	service := login(t, router, "SGESPVERTS")
	w = doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0002/status", service, gin.H{
		"target": "PROCUREMENT_APPROVED",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-9999/status", procurement, gin.H{
		"target": "PROCUREMENT_APPROVED",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevertEndpoint(t *testing.T) {
	router := newTestRouter(t)
	finance := login(t, router, "FINANCES")

	// INV-0006 is mandated.
	w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0006/revert", finance, gin.H{
		"confirm_secret": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0006/revert", finance, gin.H{
		"confirm_secret": "Daf59",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDepartmentEndpoints(t *testing.T) {
	router := newTestRouter(t)
	finance := login(t, router, "FINANCES")

	w := doJSON(t, router, http.MethodPost, "/api/v1/departments", finance, gin.H{
		"name":        "SG Archives",
		"designation": "Service des Archives",
		"secret":      "s3cret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/departments/FINANCES", finance, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	service := login(t, router, "SGSPORTS")
	w = doJSON(t, router, http.MethodPost, "/api/v1/departments", service, gin.H{
		"name":        "SG Intrus",
		"designation": "Intrus",
		"secret":      "x",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshRestoresFixtureState(t *testing.T) {
	router := newTestRouter(t)
	procurement := login(t, router, "COMMANDE PUBLIQUE")

	w := doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0001/status", procurement, gin.H{
		"target": "PROCUREMENT_APPROVED",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/refresh", procurement, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// After the reset INV-0001 is submitted again, so the same
	// transition succeeds a second time.
	w = doJSON(t, router, http.MethodPost, "/api/v1/invoices/INV-0001/status", procurement, gin.H{
		"target": "PROCUREMENT_APPROVED",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryExportEndpoint(t *testing.T) {
	router := newTestRouter(t)
	finance := login(t, router, "FINANCES")

	w := doJSON(t, router, http.MethodGet, "/api/v1/history/export", finance, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}
