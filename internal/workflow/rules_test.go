package workflow

import (
	"testing"

	"github.com/ghermet/factureflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func invoiceIn(department string, status models.Status) *models.Invoice {
	return &models.Invoice{
		ID:           "INV-0001",
		DepartmentID: department,
		Status:       status,
	}
}

func userFor(department string) models.CurrentUser {
	return models.CurrentUser{
		DepartmentID: department,
		Name:         department,
		Role:         models.RoleFor(department),
	}
}

func targets(actions []Action) []models.Status {
	out := make([]models.Status, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Target)
	}
	return out
}

func TestPermittedActions(t *testing.T) {
	procurement := userFor(models.DeptProcurement)
	finance := userFor(models.DeptFinance)

	tests := []struct {
		name    string
		invoice *models.Invoice
		user    models.CurrentUser
		want    []models.Status
	}{
		{
			name:    "procurement validates or rejects a submitted invoice",
			invoice: invoiceIn("SGESPVERTS", models.StatusSubmitted),
			user:    procurement,
			want:    []models.Status{models.StatusProcurementApproved, models.StatusRejectedByProcurement},
		},
		{
			name:    "procurement cannot touch a special department invoice",
			invoice: invoiceIn("CCAS", models.StatusSubmitted),
			user:    procurement,
			want:    nil,
		},
		{
			name:    "procurement cannot act past its stage",
			invoice: invoiceIn("SGESPVERTS", models.StatusProcurementApproved),
			user:    procurement,
			want:    nil,
		},
		{
			name:    "procurement first stage on its own department",
			invoice: invoiceIn(models.DeptSelfProcurement, models.StatusSubmitted),
			user:    procurement,
			want:    []models.Status{models.StatusProcurementApproved},
		},
		{
			name:    "procurement second stage on its own department acts as the service",
			invoice: invoiceIn(models.DeptSelfProcurement, models.StatusProcurementApproved),
			user:    procurement,
			want:    []models.Status{models.StatusPendingMandate, models.StatusRejectedByService},
		},
		{
			name:    "service validates a procurement-approved invoice",
			invoice: invoiceIn("SGSPORTS", models.StatusProcurementApproved),
			user:    userFor("SGSPORTS"),
			want:    []models.Status{models.StatusPendingMandate, models.StatusRejectedByService},
		},
		{
			name:    "service cannot act on another department's invoice",
			invoice: invoiceIn("SGSPORTS", models.StatusProcurementApproved),
			user:    userFor("SGCULTURE"),
			want:    nil,
		},
		{
			name:    "service reaches a subordinate department's invoice",
			invoice: invoiceIn("SGTHEATRE", models.StatusProcurementApproved),
			user:    userFor("SGCULTURE"),
			want:    []models.Status{models.StatusPendingMandate, models.StatusRejectedByService},
		},
		{
			name:    "special department validates straight from submitted",
			invoice: invoiceIn("CCAS", models.StatusSubmitted),
			user:    userFor("CCAS"),
			want:    []models.Status{models.StatusPendingMandate, models.StatusRejectedByService},
		},
		{
			name:    "special department has no procurement-approved stage",
			invoice: invoiceIn("CCAS", models.StatusProcurementApproved),
			user:    userFor("CCAS"),
			want:    nil,
		},
		{
			name:    "finance mandates or rejects a pending invoice",
			invoice: invoiceIn("SGCULTURE", models.StatusPendingMandate),
			user:    finance,
			want:    []models.Status{models.StatusMandated, models.StatusRejectedByFinance},
		},
		{
			name:    "finance self-approves its own submissions",
			invoice: invoiceIn(models.DeptSelfFinance, models.StatusSubmitted),
			user:    finance,
			want:    []models.Status{models.StatusPendingMandate, models.StatusRejectedByService},
		},
		{
			name:    "finance cannot act on a freshly submitted regular invoice",
			invoice: invoiceIn("SGSPORTS", models.StatusSubmitted),
			user:    finance,
			want:    nil,
		},
		{
			name:    "terminal statuses have no table transitions",
			invoice: invoiceIn("SGRH", models.StatusMandated),
			user:    finance,
			want:    nil,
		},
		{
			name:    "rejected statuses have no table transitions",
			invoice: invoiceIn("SGJURID", models.StatusRejectedByProcurement),
			user:    procurement,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := permittedActions(tt.invoice, tt.user)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, targets(got))
		})
	}
}

func TestPermittedActionsExcludesInvalidInvoices(t *testing.T) {
	inv := invoiceIn("SGSPORTS", models.StatusSubmitted)
	inv.IsInvalid = true
	assert.Empty(t, permittedActions(inv, userFor(models.DeptProcurement)))
}

func TestRejectionsRequireComment(t *testing.T) {
	inv := invoiceIn("SGESPVERTS", models.StatusSubmitted)
	for _, action := range permittedActions(inv, userFor(models.DeptProcurement)) {
		assert.Equal(t, action.Target.Rejection(), action.CommentRequired,
			"comment requirement must track rejection targets, got %+v", action)
	}
}
