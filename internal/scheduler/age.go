// Package scheduler runs the periodic maintenance jobs. The only job
// today refreshes the cached age-in-days display value once a day; it
// carries no ordering or correctness obligations.
package scheduler

import (
	"time"

	"github.com/ghermet/factureflow/internal/repository"
	"github.com/ghermet/factureflow/internal/workflow"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AgeRefresher recomputes invoice ages on a daily schedule.
type AgeRefresher struct {
	invoiceRepo *repository.InvoiceRepository
	cron        *cron.Cron
	logger      *zap.Logger
}

// NewAgeRefresher creates a new age refresher
func NewAgeRefresher(invoiceRepo *repository.InvoiceRepository, logger *zap.Logger) *AgeRefresher {
	return &AgeRefresher{
		invoiceRepo: invoiceRepo,
		cron:        cron.New(),
		logger:      logger,
	}
}

// Start runs one sweep immediately and schedules a daily one.
func (a *AgeRefresher) Start() error {
	a.Sweep()
	if _, err := a.cron.AddFunc("@daily", a.Sweep); err != nil {
		return err
	}
	a.cron.Start()
	return nil
}

// Stop halts the schedule.
func (a *AgeRefresher) Stop() {
	a.cron.Stop()
}

// Sweep recomputes the cached age for every invoice.
func (a *AgeRefresher) Sweep() {
	invoices, err := a.invoiceRepo.List()
	if err != nil {
		a.logger.Error("Age sweep failed to list invoices", zap.Error(err))
		return
	}

	now := time.Now()
	updated := 0
	for _, inv := range invoices {
		age := workflow.AgeDays(inv, now)
		if age == inv.AgeDays {
			continue
		}
		if err := a.invoiceRepo.UpdateAgeDays(inv.ID, age); err != nil {
			a.logger.Error("Age sweep failed to update invoice",
				zap.String("invoice_id", inv.ID),
				zap.Error(err))
			continue
		}
		updated++
	}

	a.logger.Info("Age sweep completed",
		zap.Int("invoices", len(invoices)),
		zap.Int("updated", updated))
}
