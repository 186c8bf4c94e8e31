package services

import (
	"time"

	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// ReconciliationMonitor runs a periodic dry-run reconciliation pass and logs
// the report, so unlinked package usages surface without anyone remembering
// to trigger a run.
type ReconciliationMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewReconciliationMonitor(db *gorm.DB) *ReconciliationMonitor {
	return &ReconciliationMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 6 * time.Hour,
	}
}

func (rm *ReconciliationMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rm.check()
			case <-rm.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Println("Reconciliation monitor started")
}

func (rm *ReconciliationMonitor) Stop() {
	close(rm.StopChan)
}

func (rm *ReconciliationMonitor) check() {
	report, err := NewReconciliationService(rm.DB).Run(true, 100)
	if err != nil {
		utils.ErrorLogger.Printf("Reconciliation dry run failed: %v", err)
		return
	}
	if report.Processed == 0 {
		return
	}
	utils.InfoLogger.Printf("Reconciliation backlog: %d unlinked usages, %d would match (%d need manual review)",
		report.Processed, report.Matched, report.MultipleMatches)
}
