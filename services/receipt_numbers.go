package services

import (
	"fmt"
	"time"

	"github.com/lengolf/venue-pos/models"
	"github.com/lengolf/venue-pos/utils"
	"gorm.io/gorm"
)

// NextReceiptNumber allocates the next number in the current business day's
// sequence, e.g. RCP/20250901/0042. Numbers are monotonic, unique per day,
// and sortable. Must run inside the caller's settlement transaction so a
// rolled-back settlement releases nothing visible.
//
// The bump is a single UPDATE of the stored value. It takes the row lock and
// reads the committed counter even when the surrounding transaction's
// snapshot predates a concurrent bump, so an overlapping settlement waits on
// the lock instead of failing.
func NextReceiptNumber(tx *gorm.DB, now time.Time) (string, error) {
	businessDate := now.Format("20060102")

	res := tx.Model(&models.ReceiptCounter{}).
		Where("business_date = ?", businessDate).
		UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return "", utils.ErrInternal(res.Error)
	}

	if res.RowsAffected == 0 {
		// first settlement of the day
		counter := models.ReceiptCounter{BusinessDate: businessDate, LastSeq: 1}
		if err := tx.Create(&counter).Error; err == nil {
			return fmt.Sprintf("RCP/%s/%04d", businessDate, 1), nil
		}
		// lost the insert race on the business_date unique index; the
		// winner's row is committed once our insert unblocks, bump it
		res = tx.Model(&models.ReceiptCounter{}).
			Where("business_date = ?", businessDate).
			UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
		if res.Error != nil {
			return "", utils.ErrInternal(res.Error)
		}
		if res.RowsAffected == 0 {
			return "", utils.ErrInternal(fmt.Errorf("receipt counter for %s vanished", businessDate))
		}
	}

	// own write, visible regardless of the snapshot
	var counter models.ReceiptCounter
	if err := tx.Where("business_date = ?", businessDate).First(&counter).Error; err != nil {
		return "", utils.ErrInternal(err)
	}
	return fmt.Sprintf("RCP/%s/%04d", businessDate, counter.LastSeq), nil
}
