package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"lab-request-api/models"
)

const requestSequenceName = "request_number"

// NextRequestNumber allocates the next request number inside the caller's
// transaction. The counter row is incremented with a single UPDATE, so
// concurrent creators serialize on the row lock and every caller reads back
// its own value before commit. Numbers are never derived from row counts.
func NextRequestNumber(tx *gorm.DB) (string, error) {
	now := time.Now()

	res := tx.Model(&models.RequestSequence{}).
		Where("sequence_name = ?", requestSequenceName).
		Updates(map[string]interface{}{
			"last_value": gorm.Expr("last_value + 1"),
			"update_at":  now,
		})
	if res.Error != nil {
		return "", fmt.Errorf("failed to advance request sequence: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// First allocation ever: create the counter row. If a concurrent
		// creator wins the insert, fall back to the increment path.
		seq := models.RequestSequence{SequenceName: requestSequenceName, LastValue: 1, UpdateAt: &now}
		if err := tx.Create(&seq).Error; err == nil {
			return FormatRequestNumber(seq.LastValue), nil
		}

		res = tx.Model(&models.RequestSequence{}).
			Where("sequence_name = ?", requestSequenceName).
			Updates(map[string]interface{}{
				"last_value": gorm.Expr("last_value + 1"),
				"update_at":  now,
			})
		if res.Error != nil {
			return "", fmt.Errorf("failed to advance request sequence: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return "", fmt.Errorf("request sequence row missing after insert race")
		}
	}

	var seq models.RequestSequence
	if err := tx.Where("sequence_name = ?", requestSequenceName).First(&seq).Error; err != nil {
		return "", fmt.Errorf("failed to read request sequence: %w", err)
	}

	return FormatRequestNumber(seq.LastValue), nil
}

// FormatRequestNumber renders a sequence value as the public request number.
// Four digits zero-padded; values past 9999 simply widen.
func FormatRequestNumber(value int64) string {
	return fmt.Sprintf("REQ-%04d", value)
}
