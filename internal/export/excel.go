// Package export renders the invoice history as an xlsx workbook.
package export

import (
	"fmt"
	"time"

	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/workflow"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Historique"

var headers = []string{
	"Nom du fichier", "Date de dépôt", "Type de dépenses", "Montant TTC",
	"Réf. CP", "Service", "Statut", "Échéance (jours)",
}

var categoryLabels = map[models.ExpenseCategory]string{
	models.ExpenseOperating: "Fonctionnement",
	models.ExpenseUtility:   "Fluide",
	models.ExpenseCapital:   "Investissement",
	models.ExpenseUnknown:   "Inconnu",
}

// HistoryWorkbook builds a workbook with one row per invoice. The
// caller owns the returned file and must Close it.
func HistoryWorkbook(invoices []models.Invoice, now time.Time) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := book.SetSheetName(book.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := book.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, inv := range invoices {
		values := []interface{}{
			inv.FileName,
			inv.DepositDate.Format("02/01/2006"),
			categoryLabels[inv.ExpenseType],
			inv.Amount,
			inv.ProcurementRef,
			inv.DepartmentID,
			string(inv.Status),
			workflow.AgeDays(inv, now),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := book.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	return book, nil
}
