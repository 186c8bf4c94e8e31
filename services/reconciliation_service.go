package services

import (
	"fmt"

	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// ReconciliationService links historical package-usage records to bookings
// using tiered confidence matching. It runs offline, independently of the
// live settlement flow, and never blocks it.
type ReconciliationService struct {
	db *gorm.DB
}

func NewReconciliationService(db *gorm.DB) *ReconciliationService {
	return &ReconciliationService{db: db}
}

// MatchDetail explains what happened to one usage row.
type MatchDetail struct {
	UsageID    uint   `json:"usage_id"`
	BookingID  *uint  `json:"booking_id,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Reason     string `json:"reason"`
	Candidates int    `json:"candidates"`
}

// MatchReport summarizes one reconciliation run. MultipleMatches counts rows
// where a tier produced more than one candidate; the tie-broken winner is
// applied but the row deserves manual review.
type MatchReport struct {
	DryRun          bool          `json:"dry_run"`
	Processed       int           `json:"processed"`
	Matched         int           `json:"matched"`
	ExactMatches    int           `json:"exact_matches"`
	CustomerMatches int           `json:"customer_matches"`
	Unmatched       int           `json:"unmatched"`
	MultipleMatches int           `json:"multiple_matches"`
	SkippedClaimed  int           `json:"skipped_claimed"`
	Details         []MatchDetail `json:"details"`
}

// Run processes usages with no booking link, oldest first. In dry-run mode
// it only reports what it would write. In live mode each write re-checks
// that neither side was claimed since the read, so a booking linked by a
// concurrent writer is skipped rather than double-linked.
func (rs *ReconciliationService) Run(dryRun bool, limit int) (*MatchReport, error) {
	report := &MatchReport{DryRun: dryRun}

	query := rs.db.Where("booking_id IS NULL").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var usages []models.PackageUsage
	if err := query.Find(&usages).Error; err != nil {
		return nil, utils.ErrInternal(err)
	}

	for _, usage := range usages {
		report.Processed++
		detail := rs.matchOne(&usage, dryRun)
		if detail.BookingID != nil {
			report.Matched++
			switch detail.Confidence {
			case models.MatchConfidenceExact:
				report.ExactMatches++
			case models.MatchConfidenceCustomer:
				report.CustomerMatches++
			}
		} else if detail.Reason == reasonClaimed {
			report.SkippedClaimed++
		} else {
			report.Unmatched++
		}
		if detail.Candidates > 1 {
			report.MultipleMatches++
			utils.InfoLogger.Printf("Usage %d: %d candidate bookings, applied %v after tie-break",
				usage.ID, detail.Candidates, detail.BookingID)
		}
		report.Details = append(report.Details, detail)
	}

	utils.InfoLogger.Printf("Reconciliation run (dry_run=%v): %d processed, %d matched (%d exact, %d customer), %d unmatched, %d multiple",
		dryRun, report.Processed, report.Matched, report.ExactMatches, report.CustomerMatches,
		report.Unmatched, report.MultipleMatches)
	return report, nil
}

const reasonClaimed = "booking claimed by a concurrent writer"

// matchOne runs the tiers in order and accepts the first non-empty result.
func (rs *ReconciliationService) matchOne(usage *models.PackageUsage, dryRun bool) MatchDetail {
	detail := MatchDetail{UsageID: usage.ID}

	// tier 1: same package, same calendar date
	candidates, err := rs.candidateBookings(usage, true)
	if err != nil {
		detail.Reason = err.Error()
		return detail
	}
	confidence := models.MatchConfidenceExact

	if len(candidates) == 0 {
		// tier 2: same customer, same date, bookings carrying a package
		// reference first
		candidates, err = rs.candidateBookings(usage, false)
		if err != nil {
			detail.Reason = err.Error()
			return detail
		}
		confidence = models.MatchConfidenceCustomer
	}

	if len(candidates) == 0 {
		detail.Reason = fmt.Sprintf("no confirmed booking on %s for package %d or its customer",
			usage.UsedDate, usage.PackageID)
		return detail
	}

	winner := candidates[0]
	detail.Candidates = len(candidates)
	detail.Confidence = confidence

	if dryRun {
		detail.BookingID = &winner.ID
		detail.Reason = "would link (dry run)"
		return detail
	}

	err = rs.db.Transaction(func(tx *gorm.DB) error {
		// recheck both sides before writing
		var claimed int64
		if err := tx.Model(&models.PackageUsage{}).
			Where("booking_id = ?", winner.ID).Count(&claimed).Error; err != nil {
			return utils.ErrInternal(err)
		}
		if claimed > 0 {
			return &utils.AppError{Kind: utils.KindConflict, Message: reasonClaimed}
		}

		res := tx.Model(&models.PackageUsage{}).
			Where("id = ? AND booking_id IS NULL", usage.ID).
			Updates(map[string]interface{}{
				"booking_id":       winner.ID,
				"match_confidence": confidence,
			})
		if res.Error != nil {
			return utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			return &utils.AppError{Kind: utils.KindConflict, Message: reasonClaimed}
		}
		return nil
	})
	if err != nil {
		detail.Confidence = ""
		detail.Reason = err.Error()
		return detail
	}

	detail.BookingID = &winner.ID
	detail.Reason = "linked"
	return detail
}

// candidateBookings lists confirmed, still-unlinked bookings for the usage's
// date. Exact tier keys on the package itself; customer tier keys on the
// package's owner and prefers bookings that carry a package reference.
// Earliest start time breaks remaining ties.
func (rs *ReconciliationService) candidateBookings(usage *models.PackageUsage, exact bool) ([]models.Booking, error) {
	linked := rs.db.Model(&models.PackageUsage{}).
		Select("booking_id").Where("booking_id IS NOT NULL")

	query := rs.db.Model(&models.Booking{}).
		Where("booking_date = ? AND status = ?", usage.UsedDate, models.BookingStatusConfirmed).
		Where("id NOT IN (?)", linked)

	if exact {
		query = query.Where("package_id = ?", usage.PackageID).Order("start_time")
	} else {
		var pkg models.CustomerPackage
		if err := rs.db.First(&pkg, usage.PackageID).Error; err != nil {
			return nil, utils.ErrInternal(err)
		}
		query = query.Where("customer_id = ?", pkg.CustomerID).
			Order("CASE WHEN package_id IS NULL THEN 1 ELSE 0 END, start_time")
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, utils.ErrInternal(err)
	}
	return bookings, nil
}
