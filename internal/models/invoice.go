package models

import "time"

// Status is the position of an invoice in the approval pipeline.
type Status string

// Pipeline statuses. Mandated and Processed are terminal; every other
// status is waiting on an action by some role.
const (
	StatusSubmitted             Status = "SUBMITTED"
	StatusProcurementApproved   Status = "PROCUREMENT_APPROVED"
	StatusPendingMandate        Status = "PENDING_MANDATE"
	StatusMandated              Status = "MANDATED"
	StatusRejectedByProcurement Status = "REJECTED_PROCUREMENT"
	StatusRejectedByService     Status = "REJECTED_SERVICE"
	StatusRejectedByFinance     Status = "REJECTED_FINANCE"
	StatusProcessed             Status = "PROCESSED"
)

// Valid reports whether s is one of the known pipeline statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusProcurementApproved, StatusPendingMandate,
		StatusMandated, StatusRejectedByProcurement, StatusRejectedByService,
		StatusRejectedByFinance, StatusProcessed:
		return true
	}
	return false
}

// Terminal reports whether s ends the pipeline.
func (s Status) Terminal() bool {
	return s == StatusMandated || s == StatusProcessed
}

// Rejection reports whether s is one of the rejection branches.
func (s Status) Rejection() bool {
	switch s {
	case StatusRejectedByProcurement, StatusRejectedByService, StatusRejectedByFinance:
		return true
	}
	return false
}

// ExpenseCategory classifies the spend carried by an invoice, derived
// from the expense token in the deposited file name.
type ExpenseCategory string

const (
	ExpenseOperating ExpenseCategory = "OPERATING" // Fonctionnement
	ExpenseUtility   ExpenseCategory = "UTILITY"   // Fluide
	ExpenseCapital   ExpenseCategory = "CAPITAL"   // Investissement
	ExpenseUnknown   ExpenseCategory = "UNKNOWN"
)

// Invoice is a deposited invoice file moving through the pipeline.
type Invoice struct {
	ID             string          `json:"id"`
	FileName       string          `json:"file_name"`
	DepositDate    time.Time       `json:"deposit_date"`
	ExpenseType    ExpenseCategory `json:"expense_type"`
	Amount         float64         `json:"amount"`
	DepartmentID   string          `json:"department_id"`
	ProcurementRef string          `json:"procurement_ref"`
	Status         Status          `json:"status"`
	Comments       []Comment       `json:"comments,omitempty"`
	IsInvalid      bool            `json:"is_invalid"`
	AgeDays        int             `json:"age_days"`
}

// Comment is an append-only note attached to an invoice. Comments are
// never edited or deleted.
type Comment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxProcurementRefLen caps the procurement reference code.
const MaxProcurementRefLen = 14

// UnknownDepartment is the sentinel department id carried by invoices
// whose file name could not be decoded.
const UnknownDepartment = "INCONNU"
