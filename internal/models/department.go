package models

// Department is an organizational unit that deposits or approves
// invoices. The id is an uppercase code unique across the registry.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Secret      string `json:"-"`
}

// Role determines which pipeline transitions an actor may invoke.
type Role string

const (
	RoleFinance     Role = "FINANCES"
	RoleProcurement Role = "COMMANDE_PUBLIQUE"
	RoleService     Role = "SERVICE"
)

// Department ids that map directly to roles. They are protected from
// deletion and from id/name edits in the registry.
const (
	DeptFinance     = "FINANCES"
	DeptProcurement = "COMMANDE PUBLIQUE"
)

// Departments with merged or skipped pipeline stages.
const (
	DeptSelfProcurement = "SGCOMPUB"   // procurement office's own invoices, two-stage self approval
	DeptSelfFinance     = "SGFINANCES" // finance office's own invoices, mandated directly
)

// SpecialDepartments bypass the procurement stage entirely: their
// invoices go from Submitted straight to the owning service.
var SpecialDepartments = map[string]bool{
	"CCAS": true,
	"SAAD": true,
	"DRE":  true,
}

// Subordinates maps a department to the departments it manages. A
// service-role actor sees and acts on its own invoices plus those of
// its subordinates.
var Subordinates = map[string][]string{
	"CCAS":      {"SAAD", "SGREPDOM"},
	"SGST":      {"SGGDSTRAV", "SGMAGASIN"},
	"SGCULTURE": {"SGTHEATRE", "SGBIBLI"},
	"SGCS":      {"SGMULTIACC", "SGRAM", "SGAFP"},
}

// RoleFor derives the logical role from a department id.
func RoleFor(departmentID string) Role {
	switch departmentID {
	case DeptFinance:
		return RoleFinance
	case DeptProcurement:
		return RoleProcurement
	default:
		return RoleService
	}
}

// CurrentUser is an authenticated actor: a department identity plus
// its derived role.
type CurrentUser struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
}

// Scope returns the department ids whose invoices u may see and act on
// as a service: its own id plus all subordinates.
func (u CurrentUser) Scope() map[string]bool {
	scope := map[string]bool{u.DepartmentID: true}
	for _, sub := range Subordinates[u.DepartmentID] {
		scope[sub] = true
	}
	return scope
}
