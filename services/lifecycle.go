package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lab-request-api/models"
)

// Lifecycle errors surfaced to controllers. Controllers translate these to
// HTTP statuses: not-found to 404, state conflicts to 409, the rest to 400
// or 403 depending on the operation.
var (
	ErrRequestNotFound      = errors.New("request not found")
	ErrRequestNotPending    = errors.New("request is no longer pending")
	ErrRequestNotInProgress = errors.New("request is not in progress")
	ErrRequestTerminal      = errors.New("request is already completed or cancelled")
	ErrNotAssignedAnalyst   = errors.New("request is assigned to a different analyst")
	ErrInvalidStatusTarget  = errors.New("status can only change to completed or cancelled")
	ErrNoResultFiles        = errors.New("request has no uploaded result files")
)

var lifecycleEdges = map[string][]string{
	models.StatusPending:    {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another. Terminal statuses have no outgoing edges.
func CanTransition(from, to string) bool {
	for _, next := range lifecycleEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClaimRequest assigns a pending request to the analyst and advances it to
// in_progress. The write is a single conditional UPDATE on status, so two
// concurrent claims produce exactly one winner; the loser gets
// ErrRequestNotPending.
func ClaimRequest(db *gorm.DB, requestID int, analystID int) error {
	res := db.Model(&models.AnalysisRequest{}).
		Where("request_id = ? AND status = ?", requestID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     models.StatusInProgress,
			"analyst_id": analystID,
			"update_at":  time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to claim request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return claimFailureReason(db, requestID)
	}
	return nil
}

func claimFailureReason(db *gorm.DB, requestID int) error {
	var request models.AnalysisRequest
	if err := db.Select("request_id", "status").First(&request, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to load request: %w", err)
	}
	return ErrRequestNotPending
}

// AnalystUpdate carries the fields an assigned analyst may change while a
// request is in progress. Nil fields are left untouched.
type AnalystUpdate struct {
	Status          *string
	AnalystComments *string
}

// UpdateByAnalyst applies an assigned analyst's changes to an in_progress
// request. A status change may only target completed or cancelled, and
// completion requires at least one uploaded result file. The file check,
// status write and completion timestamp land in one transaction guarded by
// a conditional UPDATE on the current status.
func UpdateByAnalyst(db *gorm.DB, requestID int, analystID int, input AnalystUpdate) error {
	if input.Status != nil && !CanTransition(models.StatusInProgress, *input.Status) {
		return ErrInvalidStatusTarget
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var request models.AnalysisRequest
		if err := tx.First(&request, "request_id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request.Status != models.StatusInProgress {
			return ErrRequestNotInProgress
		}
		if request.AnalystID == nil || *request.AnalystID != analystID {
			return ErrNotAssignedAnalyst
		}

		now := time.Now()
		updates := map[string]interface{}{"update_at": now}
		if input.AnalystComments != nil {
			updates["analyst_comments"] = *input.AnalystComments
		}
		if input.Status != nil {
			if *input.Status == models.StatusCompleted {
				var fileCount int64
				if err := tx.Model(&models.ResultFile{}).Where("request_id = ?", requestID).Count(&fileCount).Error; err != nil {
					return fmt.Errorf("failed to count result files: %w", err)
				}
				if fileCount == 0 {
					return ErrNoResultFiles
				}
				updates["completed_at"] = now
			}
			updates["status"] = *input.Status
		}

		res := tx.Model(&models.AnalysisRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.StatusInProgress).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotInProgress
		}
		return nil
	})
}

// CancelRequest cancels a pending or in_progress request on behalf of an
// admin and returns the status the request held before cancellation. The
// write is conditional on the observed status so a concurrent transition
// cannot be overwritten.
func CancelRequest(db *gorm.DB, requestID int) (string, error) {
	var request models.AnalysisRequest
	if err := db.Select("request_id", "status").First(&request, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRequestNotFound
		}
		return "", fmt.Errorf("failed to load request: %w", err)
	}
	if !CanTransition(request.Status, models.StatusCancelled) {
		return "", ErrRequestTerminal
	}

	res := db.Model(&models.AnalysisRequest{}).
		Where("request_id = ? AND status = ?", requestID, request.Status).
		Updates(map[string]interface{}{
			"status":    models.StatusCancelled,
			"update_at": time.Now(),
		})
	if res.Error != nil {
		return "", fmt.Errorf("failed to cancel request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrRequestTerminal
	}
	return request.Status, nil
}
