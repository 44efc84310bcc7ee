package workflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/ghermet/factureflow/internal/models"
)

// Dashboard projects the invoice collection down to what user must act
// on. It is a pure read-side filter, re-derived from current data on
// every call.
func Dashboard(invoices []models.Invoice, user models.CurrentUser) []models.Invoice {
	visible := make([]models.Invoice, 0, len(invoices))

	switch user.Role {
	case models.RoleFinance:
		for _, inv := range invoices {
			if inv.Status == models.StatusPendingMandate {
				visible = append(visible, inv)
				continue
			}
			// Finance's own deposits skip the rest of the pipeline.
			if inv.DepartmentID == models.DeptSelfFinance && inv.Status == models.StatusSubmitted {
				visible = append(visible, inv)
			}
		}

	case models.RoleProcurement:
		for _, inv := range invoices {
			if models.SpecialDepartments[inv.DepartmentID] || inv.DepartmentID == models.DeptSelfFinance {
				continue
			}
			if inv.DepartmentID == models.DeptSelfProcurement {
				// Two-stage self approval: both stages stay visible.
				if inv.Status == models.StatusSubmitted || inv.Status == models.StatusProcurementApproved {
					visible = append(visible, inv)
				}
				continue
			}
			if inv.Status == models.StatusSubmitted {
				visible = append(visible, inv)
			}
		}

	case models.RoleService:
		scope := user.Scope()
		special := models.SpecialDepartments[user.DepartmentID]
		for _, inv := range invoices {
			if !scope[inv.DepartmentID] {
				continue
			}
			if special {
				if inv.Status == models.StatusSubmitted {
					visible = append(visible, inv)
				}
				continue
			}
			if inv.Status == models.StatusProcurementApproved {
				visible = append(visible, inv)
			}
		}
	}

	return visible
}

// Stats summarizes a visible invoice set for the dashboard cards.
type Stats struct {
	Total     int `json:"total"`
	ToProcess int `json:"to_process"`
	Rejected  int `json:"rejected"`
}

// DashboardStats computes counters over an already filtered set.
func DashboardStats(visible []models.Invoice) Stats {
	stats := Stats{Total: len(visible)}
	for _, inv := range visible {
		switch inv.Status {
		case models.StatusSubmitted, models.StatusProcurementApproved, models.StatusPendingMandate:
			stats.ToProcess++
		}
		if inv.Status.Rejection() {
			stats.Rejected++
		}
	}
	return stats
}

// HistoryFilter narrows the audit view. Zero values match everything.
type HistoryFilter struct {
	FileName     string
	DepartmentID string
	ExpenseType  models.ExpenseCategory
	Amount       string
	Status       models.Status
}

// History returns the audit projection: every invoice matching the
// filters, for any role, except that procurement never sees the
// special departments' invoices.
func History(invoices []models.Invoice, user models.CurrentUser, f HistoryFilter) []models.Invoice {
	matched := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if user.Role == models.RoleProcurement && models.SpecialDepartments[inv.DepartmentID] {
			continue
		}
		if !f.matches(inv) {
			continue
		}
		matched = append(matched, inv)
	}
	return matched
}

func (f HistoryFilter) matches(inv models.Invoice) bool {
	if f.FileName != "" && !strings.Contains(strings.ToLower(inv.FileName), strings.ToLower(f.FileName)) {
		return false
	}
	if f.DepartmentID != "" && inv.DepartmentID != f.DepartmentID {
		return false
	}
	if f.ExpenseType != "" && inv.ExpenseType != f.ExpenseType {
		return false
	}
	if f.Amount != "" && !strings.Contains(strconv.FormatFloat(inv.Amount, 'f', -1, 64), f.Amount) {
		return false
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	return true
}

// AgeDays is the display value shown in the history view: days since
// deposit, pinned to zero once the invoice is mandated.
func AgeDays(inv models.Invoice, now time.Time) int {
	if inv.Status == models.StatusMandated {
		return 0
	}
	age := int(now.Sub(inv.DepositDate).Hours() / 24)
	if age < 0 {
		return 0
	}
	return age
}
