package workflow

import (
	"testing"
	"time"

	"github.com/ghermet/factureflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func corpus() []models.Invoice {
	return []models.Invoice{
		*invoiceIn("SGESPVERTS", models.StatusSubmitted),
		*invoiceIn("SGSPORTS", models.StatusProcurementApproved),
		*invoiceIn("SGRH", models.StatusPendingMandate),
		*invoiceIn("SGJURID", models.StatusMandated),
		*invoiceIn("CCAS", models.StatusSubmitted),
		*invoiceIn("SAAD", models.StatusSubmitted),
		*invoiceIn("SGFINANCES", models.StatusSubmitted),
		*invoiceIn("SGCOMPUB", models.StatusProcurementApproved),
		*invoiceIn("SGTHEATRE", models.StatusProcurementApproved),
		*invoiceIn("SGCULTURE", models.StatusRejectedByService),
	}
}

func departments(invoices []models.Invoice) map[string][]models.Status {
	out := make(map[string][]models.Status)
	for _, inv := range invoices {
		out[inv.DepartmentID] = append(out[inv.DepartmentID], inv.Status)
	}
	return out
}

func TestDashboardFinance(t *testing.T) {
	visible := Dashboard(corpus(), userFor(models.DeptFinance))
	got := departments(visible)

	assert.Len(t, visible, 2)
	assert.Contains(t, got, "SGRH")
	// SGFINANCES deposits land on the finance queue directly.
	assert.Contains(t, got, "SGFINANCES")
	assert.NotContains(t, got, "SGJURID")
}

func TestDashboardProcurement(t *testing.T) {
	visible := Dashboard(corpus(), userFor(models.DeptProcurement))
	got := departments(visible)

	assert.Contains(t, got, "SGESPVERTS")
	// SGCOMPUB stays on the procurement queue through both stages.
	assert.Contains(t, got, "SGCOMPUB")
	// Special departments and finance's own deposits never surface here.
	assert.NotContains(t, got, "CCAS")
	assert.NotContains(t, got, "SAAD")
	assert.NotContains(t, got, "SGFINANCES")
	assert.NotContains(t, got, "SGSPORTS")
}

func TestDashboardService(t *testing.T) {
	visible := Dashboard(corpus(), userFor("SGSPORTS"))
	got := departments(visible)

	assert.Len(t, visible, 1)
	assert.Contains(t, got, "SGSPORTS")
}

func TestDashboardServiceIncludesSubordinates(t *testing.T) {
	visible := Dashboard(corpus(), userFor("SGCULTURE"))
	got := departments(visible)

	assert.Contains(t, got, "SGTHEATRE")
	// The rejected SGCULTURE invoice is off the work queue.
	assert.NotContains(t, got, "SGCULTURE")
}

func TestDashboardSpecialDepartment(t *testing.T) {
	visible := Dashboard(corpus(), userFor("CCAS"))
	got := departments(visible)

	// CCAS sees its own and SAAD's submitted invoices, pre-procurement.
	assert.Contains(t, got, "CCAS")
	assert.Contains(t, got, "SAAD")
	assert.NotContains(t, got, "SGESPVERTS")
}

func TestDashboardStats(t *testing.T) {
	stats := DashboardStats([]models.Invoice{
		*invoiceIn("SGESPVERTS", models.StatusSubmitted),
		*invoiceIn("SGSPORTS", models.StatusPendingMandate),
		*invoiceIn("SGRH", models.StatusRejectedByProcurement),
		*invoiceIn("SGJURID", models.StatusMandated),
	})

	assert.Equal(t, Stats{Total: 4, ToProcess: 2, Rejected: 1}, stats)
}

func TestHistoryVisibleToAllRoles(t *testing.T) {
	all := corpus()

	assert.Len(t, History(all, userFor(models.DeptFinance), HistoryFilter{}), len(all))
	assert.Len(t, History(all, userFor("SGESPVERTS"), HistoryFilter{}), len(all))

	// Procurement's view drops the two special-department invoices.
	procurement := History(all, userFor(models.DeptProcurement), HistoryFilter{})
	got := departments(procurement)
	assert.Len(t, procurement, len(all)-2)
	assert.NotContains(t, got, "CCAS")
	assert.NotContains(t, got, "SAAD")
}

func TestHistoryFilters(t *testing.T) {
	invoices := []models.Invoice{
		{ID: "INV-0001", FileName: "SGINFORMAT-ORANGE-12345-F-(1250.50).pdf", DepartmentID: "SGINFORMAT", ExpenseType: models.ExpenseOperating, Amount: 1250.50, Status: models.StatusSubmitted},
		{ID: "INV-0002", FileName: "SGST-SULO-98-I-(899).pdf", DepartmentID: "SGST", ExpenseType: models.ExpenseCapital, Amount: 899, Status: models.StatusMandated},
	}
	user := userFor(models.DeptFinance)

	tests := []struct {
		name   string
		filter HistoryFilter
		want   []string
	}{
		{name: "no filter matches everything", filter: HistoryFilter{}, want: []string{"INV-0001", "INV-0002"}},
		{name: "file name is a case-insensitive substring", filter: HistoryFilter{FileName: "orange"}, want: []string{"INV-0001"}},
		{name: "department is exact", filter: HistoryFilter{DepartmentID: "SGST"}, want: []string{"INV-0002"}},
		{name: "expense type", filter: HistoryFilter{ExpenseType: models.ExpenseCapital}, want: []string{"INV-0002"}},
		{name: "amount is a substring of the formatted value", filter: HistoryFilter{Amount: "1250.5"}, want: []string{"INV-0001"}},
		{name: "status", filter: HistoryFilter{Status: models.StatusMandated}, want: []string{"INV-0002"}},
		{name: "filters combine as AND", filter: HistoryFilter{DepartmentID: "SGST", Status: models.StatusSubmitted}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, inv := range History(invoices, user, tt.filter) {
				got = append(got, inv.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		invoice models.Invoice
		want    int
	}{
		{
			name:    "days since deposit",
			invoice: models.Invoice{DepositDate: now.AddDate(0, 0, -10), Status: models.StatusSubmitted},
			want:    10,
		},
		{
			name:    "partial day floors to zero",
			invoice: models.Invoice{DepositDate: now.Add(-6 * time.Hour), Status: models.StatusSubmitted},
			want:    0,
		},
		{
			name:    "mandated invoices stop aging",
			invoice: models.Invoice{DepositDate: now.AddDate(0, 0, -30), Status: models.StatusMandated},
			want:    0,
		},
		{
			name:    "future deposit clamps to zero",
			invoice: models.Invoice{DepositDate: now.AddDate(0, 0, 2), Status: models.StatusSubmitted},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeDays(tt.invoice, now))
		})
	}
}
