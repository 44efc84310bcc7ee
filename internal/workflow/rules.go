package workflow

import "github.com/ghermet/factureflow/internal/models"

// Action is one transition a role may apply to an invoice in its
// current state. Rejections carry a mandatory rationale comment.
type Action struct {
	Target          models.Status `json:"target"`
	CommentRequired bool          `json:"comment_required"`
}

// departmentClass partitions invoice departments by how they traverse
// the pipeline.
type departmentClass int

const (
	classRegular departmentClass = iota
	classSpecial                 // CCAS, SAAD, DRE: skip the procurement stage
	classSelfProcurement         // SGCOMPUB: procurement approves both stages itself
	classSelfFinance             // SGFINANCES: finance approves its own submissions
)

func classify(departmentID string) departmentClass {
	switch {
	case models.SpecialDepartments[departmentID]:
		return classSpecial
	case departmentID == models.DeptSelfProcurement:
		return classSelfProcurement
	case departmentID == models.DeptSelfFinance:
		return classSelfFinance
	default:
		return classRegular
	}
}

// rule is one row of the transition table: who may act, on which
// status, for which department class, and what they may do.
type rule struct {
	role        models.Role
	status      models.Status
	classes     []departmentClass
	scopeGated  bool // service actors only reach their own and subordinate departments
	actions     []Action
}

func (r rule) matchesClass(c departmentClass) bool {
	for _, rc := range r.classes {
		if rc == c {
			return true
		}
	}
	return false
}

// transitionRules is the whole role/status/department authorization
// table. Both the permission check and the apply path consult it, so
// the two can never disagree.
var transitionRules = []rule{
	{
		role:    models.RoleProcurement,
		status:  models.StatusSubmitted,
		classes: []departmentClass{classRegular},
		actions: []Action{
			{Target: models.StatusProcurementApproved},
			{Target: models.StatusRejectedByProcurement, CommentRequired: true},
		},
	},
	{
		// Procurement's own invoices: first stage, acting as procurement.
		role:    models.RoleProcurement,
		status:  models.StatusSubmitted,
		classes: []departmentClass{classSelfProcurement},
		actions: []Action{
			{Target: models.StatusProcurementApproved},
		},
	},
	{
		// Procurement's own invoices: second stage, acting as the owning service.
		role:    models.RoleProcurement,
		status:  models.StatusProcurementApproved,
		classes: []departmentClass{classSelfProcurement},
		actions: []Action{
			{Target: models.StatusPendingMandate},
			{Target: models.StatusRejectedByService, CommentRequired: true},
		},
	},
	{
		role:       models.RoleService,
		status:     models.StatusProcurementApproved,
		classes:    []departmentClass{classRegular, classSelfProcurement, classSelfFinance},
		scopeGated: true,
		actions: []Action{
			{Target: models.StatusPendingMandate},
			{Target: models.StatusRejectedByService, CommentRequired: true},
		},
	},
	{
		// Special departments skip procurement and validate straight
		// from Submitted.
		role:       models.RoleService,
		status:     models.StatusSubmitted,
		classes:    []departmentClass{classSpecial},
		scopeGated: true,
		actions: []Action{
			{Target: models.StatusPendingMandate},
			{Target: models.StatusRejectedByService, CommentRequired: true},
		},
	},
	{
		role:    models.RoleFinance,
		status:  models.StatusPendingMandate,
		classes: []departmentClass{classRegular, classSpecial, classSelfProcurement, classSelfFinance},
		actions: []Action{
			{Target: models.StatusMandated},
			{Target: models.StatusRejectedByFinance, CommentRequired: true},
		},
	},
	{
		// Finance self-approves its own submissions.
		role:    models.RoleFinance,
		status:  models.StatusSubmitted,
		classes: []departmentClass{classSelfFinance},
		actions: []Action{
			{Target: models.StatusPendingMandate},
			{Target: models.StatusRejectedByService, CommentRequired: true},
		},
	},
}

// permittedActions returns the transitions user may apply to inv per
// the table. Invalid invoices are excluded from all workflow actions.
func permittedActions(inv *models.Invoice, user models.CurrentUser) []Action {
	if inv.IsInvalid {
		return nil
	}

	class := classify(inv.DepartmentID)
	for _, r := range transitionRules {
		if r.role != user.Role || r.status != inv.Status || !r.matchesClass(class) {
			continue
		}
		if r.scopeGated && !user.Scope()[inv.DepartmentID] {
			continue
		}
		return r.actions
	}
	return nil
}

// findAction returns the table entry allowing user to move inv to
// target, if any.
func findAction(inv *models.Invoice, user models.CurrentUser, target models.Status) (Action, bool) {
	for _, action := range permittedActions(inv, user) {
		if action.Target == target {
			return action, true
		}
	}
	return Action{}, false
}
