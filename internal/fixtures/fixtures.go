// Package fixtures seeds the in-memory database with the static
// department directory and the demonstration invoice set. Since the
// database does not survive a restart, seeding runs at every startup;
// a refresh discards all mutations and reruns it.
package fixtures

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ghermet/factureflow/internal/decoder"
	"github.com/ghermet/factureflow/internal/models"
	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/pkg/database"
	"go.uber.org/zap"
)

// defaultSecret is the out-of-the-box secret for every fixture
// department; real deployments replace these via the registry.
const defaultSecret = "1234"

var departments = []models.Department{
	{ID: "FINANCES", Name: "Finances", Designation: "Finances"},
	{ID: "COMMANDE PUBLIQUE", Name: "Commande Publique", Designation: "Commande publique"},
	{ID: "SGDG", Name: "Direction Générale", Designation: "Direction Générale"},
	{ID: "SGAFFGENER", Name: "Affaires Générales", Designation: "Affaires Générales"},
	{ID: "SGJURID", Name: "Juridique", Designation: "Juridique"},
	{ID: "SGCOMMUNIC", Name: "Communication", Designation: "Communication"},
	{ID: "SGCULTURE", Name: "Culture", Designation: "Culture"},
	{ID: "SGTHEATRE", Name: "Théâtre", Designation: "Théâtre Municipal"},
	{ID: "SGPOLICE", Name: "Police Municipale", Designation: "Police Municipale"},
	{ID: "SGRH", Name: "Ressources Humaines", Designation: "Ressources Humaines"},
	{ID: "SGPROPURB", Name: "Propreté Urbaine", Designation: "Propreté Urbaine"},
	{ID: "SGESPVERTS", Name: "Espaces Verts", Designation: "Espaces Verts"},
	{ID: "SGSPORTS", Name: "Sports", Designation: "Sports"},
	{ID: "SGSCOLAIRE", Name: "Scolaire", Designation: "Affaires Scolaires"},
	{ID: "SGCS", Name: "Centre Sociaux", Designation: "Centre Sociaux"},
	{ID: "CCAS", Name: "CCAS", Designation: "CCAS"},
	{ID: "DRE", Name: "DRE", Designation: "DRE"},
	{ID: "SGPOLITVILLE", Name: "Politique de la Ville", Designation: "Politique de la Ville"},
	{ID: "SAAD", Name: "SAAD", Designation: "SAAD"},
	{ID: "SGST", Name: "Services Techniques", Designation: "Services Techniques"},
	{ID: "SGINFORMAT", Name: "Informatique", Designation: "Informatique"},
	{ID: "SGBIBLI", Name: "Bibliothèque", Designation: "Bibliothèque Municipale"},
	{ID: "SGRESTO", Name: "Restauration", Designation: "Restauration Municipale"},
	{ID: "SGVIEASSO", Name: "Vie Associative", Designation: "Vie Associative"},
	{ID: "SGMULTIACC", Name: "Multi-accueil", Designation: "Multi-accueil"},
	{ID: "SGAFP", Name: "AFP", Designation: "AFP"},
	{ID: "SGRAM", Name: "RAM", Designation: "RAM"},
	{ID: "SGGDSTRAV", Name: "Grands Travaux", Designation: "Grands Travaux"},
	{ID: "SGMAGASIN", Name: "Magasin", Designation: "Magasin Municipal"},
	{ID: "SGELUS", Name: "Elus", Designation: "Elus"},
	{ID: "SGENTRET", Name: "Entretien", Designation: "Entretien"},
	{ID: "SGRECPT", Name: "Réception", Designation: "Réception"},
	{ID: "SGREPDOM", Name: "Repas à domicile", Designation: "Repas à domicile"},
	{ID: "SGFINANCES", Name: "Finances (SG)", Designation: "Finances (SG)"},
	{ID: "SGCOMPUB", Name: "Comptabilité publique", Designation: "Comptabilité publique"},
}

// invoiceFixture describes one seeded invoice; the decoded fields come
// from the file name, like a real deposit would.
type invoiceFixture struct {
	fileName string
	status   models.Status
	ref      string
	comments []commentFixture
}

type commentFixture struct {
	author string
	text   string
}

var invoices = []invoiceFixture{
	{fileName: "SGINFORMAT-ORANGE-12345-F-(1250.50).pdf", status: models.StatusSubmitted},
	{fileName: "SGESPVERTS-DEVEAUX-67890-I-(8500.00).pdf", status: models.StatusSubmitted},
	{fileName: "CCAS-FOURNISSEURC-11223-F-(345.20).pdf", status: models.StatusSubmitted,
		comments: []commentFixture{{author: "CCAS", text: "Urgent svp."}}},
	{fileName: "SGSPORTS-EDF-33445-FL-(2100.75).pdf", status: models.StatusProcurementApproved, ref: "CP2024-001",
		comments: []commentFixture{{author: "Commande Publique", text: "Validé."}}},
	{fileName: "SGCULTURE-FNAC-55667-F-(830.00).pdf", status: models.StatusPendingMandate, ref: "CP2024-002",
		comments: []commentFixture{
			{author: "Commande Publique", text: "OK pour moi"},
			{author: "Culture", text: "Validé également"},
		}},
	{fileName: "SGRH-MANPOWER-99001-F-(120.00).pdf", status: models.StatusMandated, ref: "CP2024-003"},
	{fileName: "SGJURID-LEXISNEXIS-31415-F-(550.00).pdf", status: models.StatusRejectedByProcurement, ref: "CP2024-005",
		comments: []commentFixture{{author: "Commande Publique", text: "Facture non conforme"}}},
	{fileName: "SGSCOLAIRE-MAJUSCULE-16180-F-(2300.00).pdf", status: models.StatusRejectedByService, ref: "CP2024-006",
		comments: []commentFixture{
			{author: "Commande Publique", text: "Ok"},
			{author: "Scolaire", text: "Refusé, matériel non livré."},
		}},
	{fileName: "URGENT_FOURNISSEURK_100.pdf", status: models.StatusSubmitted},
	{fileName: "SGST-SULO-XYZ-X-(250.00).pdf", status: models.StatusSubmitted},
	{fileName: "DRE-EIFFAGE-27182-I-(4200.00).pdf", status: models.StatusSubmitted},
	{fileName: "SGMAGASIN-BRICOMAN-31447-F-(680.30).pdf", status: models.StatusPendingMandate, ref: "CP2024-007"},
	{fileName: "SGCOMPUB-PAPETERIE-001-F-(150.00).pdf", status: models.StatusSubmitted},
	{fileName: "SGFINANCES-ASSURANCE-002-F-(2500.00).pdf", status: models.StatusSubmitted},
	{fileName: "SAAD-AIDESERVICE-54321-F-(250.00).pdf", status: models.StatusSubmitted},
	{fileName: "SGELUS-RECEPTION-65432-F-(1200.00).pdf", status: models.StatusSubmitted},
	{fileName: "SGGDSTRAV-COLAS-76543-I-(15000.00).pdf", status: models.StatusSubmitted},
	{fileName: "SGAFP-FORMATION-87654-F-(800.00).pdf", status: models.StatusSubmitted},
}

// Seeder wipes and repopulates the fixture data.
type Seeder struct {
	db          *database.DB
	deptRepo    *repository.DepartmentRepository
	invoiceRepo *repository.InvoiceRepository
	commentRepo *repository.CommentRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewSeeder creates a new fixture seeder
func NewSeeder(
	db *database.DB,
	deptRepo *repository.DepartmentRepository,
	invoiceRepo *repository.InvoiceRepository,
	commentRepo *repository.CommentRepository,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		db:          db,
		deptRepo:    deptRepo,
		invoiceRepo: invoiceRepo,
		commentRepo: commentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Seed discards all current data and reloads the fixture collection.
func (s *Seeder) Seed() error {
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.invoiceRepo.DeleteAll(tx); err != nil {
			return err
		}
		if err := s.deptRepo.DeleteAll(tx); err != nil {
			return err
		}

		for _, dept := range departments {
			d := dept
			d.Secret = defaultSecret
			if err := s.deptRepo.Create(tx, &d); err != nil {
				return err
			}
		}

		now := s.now()
		for i, fixture := range invoices {
			fields := decoder.Decode(fixture.fileName)
			inv := &models.Invoice{
				ID:             fmt.Sprintf("INV-%04d", i+1),
				FileName:       fixture.fileName,
				DepositDate:    now,
				ExpenseType:    fields.ExpenseType,
				Amount:         fields.Amount,
				DepartmentID:   fields.Department,
				ProcurementRef: fixture.ref,
				Status:         fixture.status,
				IsInvalid:      fields.Invalid,
			}
			if err := s.invoiceRepo.Create(tx, inv); err != nil {
				return err
			}

			for j, c := range fixture.comments {
				comment := &models.Comment{
					ID:        fmt.Sprintf("c%d-%d", i+1, j+1),
					InvoiceID: inv.ID,
					Author:    c.author,
					Text:      c.text,
					Timestamp: now,
				}
				if err := s.commentRepo.Create(tx, comment); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed fixtures: %w", err)
	}

	s.logger.Info("Fixture data loaded",
		zap.Int("departments", len(departments)),
		zap.Int("invoices", len(invoices)))
	return nil
}
