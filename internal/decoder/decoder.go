// Package decoder turns conventionally named invoice files into
// structured invoice fields. The convention is
// DEPT-SUPPLIER-REF-TYPE-(AMOUNT).pdf; anything after the fifth field
// is free text and ignored.
package decoder

import (
	"strconv"
	"strings"

	"github.com/ghermet/factureflow/internal/models"
)

const delimiter = "-"

// agencyPrefix is the two-letter prefix carried by regular municipal
// departments.
const agencyPrefix = "SG"

// standaloneDepartments are accepted without the agency prefix.
var standaloneDepartments = map[string]bool{
	"CCAS":     true,
	"SAAD":     true,
	"DRE":      true,
	"FINANCES": true,
}

// departmentAliases remaps literal file-name tokens to canonical
// registry ids.
var departmentAliases = map[string]string{
	"COMMANDE": models.DeptProcurement,
}

var expenseTokens = map[string]models.ExpenseCategory{
	"F":  models.ExpenseOperating,
	"FL": models.ExpenseUtility,
	"I":  models.ExpenseCapital,
}

// Fields is the structured result of decoding a file name. Invalid is
// the OR of every independent decode failure; an invalid invoice is
// display-only and excluded from all workflow actions.
type Fields struct {
	Department  string
	ExpenseType models.ExpenseCategory
	Amount      float64
	Invalid     bool
}

// Decode extracts invoice fields from fileName. It never fails: a
// malformed name degrades into a Fields value with Invalid set.
func Decode(fileName string) Fields {
	name := strings.TrimSuffix(fileName, ".pdf")
	parts := strings.Split(name, delimiter)

	if len(parts) < 5 {
		return Fields{
			Department:  models.UnknownDepartment,
			ExpenseType: models.ExpenseUnknown,
			Amount:      0,
			Invalid:     true,
		}
	}

	var invalid bool

	department := parts[0]
	if !validDepartmentToken(department) {
		invalid = true
	}
	if canonical, ok := departmentAliases[department]; ok {
		department = canonical
	}
	if department == "" {
		department = models.UnknownDepartment
	}

	expenseType, ok := expenseTokens[parts[3]]
	if !ok {
		expenseType = models.ExpenseUnknown
		invalid = true
	}

	amount, amountOK := parseAmount(parts[4])
	if !amountOK {
		invalid = true
	}

	return Fields{
		Department:  department,
		ExpenseType: expenseType,
		Amount:      amount,
		Invalid:     invalid,
	}
}

func validDepartmentToken(token string) bool {
	if strings.HasPrefix(token, agencyPrefix) {
		return true
	}
	if standaloneDepartments[token] {
		return true
	}
	_, aliased := departmentAliases[token]
	return aliased
}

// parseAmount normalizes and parses the amount token. An empty token
// is tolerated and parses to 0; a malformed one is not.
func parseAmount(token string) (float64, bool) {
	if token == "" {
		return 0, true
	}
	cleaned := strings.NewReplacer("(", "", ")", "", ",", ".").Replace(token)
	if cleaned == "" {
		return 0, true
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
