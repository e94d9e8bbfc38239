package jobs

import (
	"context"
	"log"
	"time"

	"github.com/creatorcart/backend/pkg/payouts"
	"github.com/creatorcart/backend/pkg/tournaments"
	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron        *cron.Cron
	payouts     *payouts.Service
	tournaments *tournaments.Service
	logger      *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(payoutService *payouts.Service, tournamentService *tournaments.Service, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:        cron.New(),
		payouts:     payoutService,
		tournaments: tournamentService,
		logger:      logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Hourly: sweep completed orders that still lack a payout. The batch is
	// idempotent, so overlapping with webhook-triggered generation is safe.
	_, err := cm.cron.AddFunc("0 * * * *", func() {
		cm.logger.Println("Running payout sweep job...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := cm.payouts.GenerateBatch(ctx)
		if err != nil {
			cm.logger.Printf("Payout sweep failed: %v", err)
			return
		}

		cm.logger.Printf("Payout sweep done: considered=%d generated=%d skipped=%d failed=%d",
			result.Considered, result.Generated, result.Skipped, result.Failed)
	})

	if err != nil {
		return err
	}

	// Every minute: advance tournament statuses along their schedule
	_, err = cm.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := cm.tournaments.TransitionStatuses(ctx, time.Now()); err != nil {
			cm.logger.Printf("Tournament status transition failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	cm.logger.Println("Cron jobs configured:")
	cm.logger.Println("  - Hourly: payout sweep for completed orders")
	cm.logger.Println("  - Every minute: tournament status transitions")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("Stopping cron scheduler...")
	cm.cron.Stop()
}
