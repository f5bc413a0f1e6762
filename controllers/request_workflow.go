// controllers/request_workflow.go - Lifecycle transitions
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/services"
)

// lifecycleError translates lifecycle sentinel errors to an HTTP status and
// caller-facing message.
func lifecycleError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return http.StatusNotFound, "Request not found"
	case errors.Is(err, services.ErrRequestNotPending):
		return http.StatusConflict, "Request is no longer pending"
	case errors.Is(err, services.ErrRequestNotInProgress):
		return http.StatusConflict, "Request is not in progress"
	case errors.Is(err, services.ErrRequestTerminal):
		return http.StatusConflict, "Request is already completed or cancelled"
	case errors.Is(err, services.ErrNotAssignedAnalyst):
		return http.StatusForbidden, "Request is assigned to a different analyst"
	case errors.Is(err, services.ErrInvalidStatusTarget):
		return http.StatusBadRequest, "Status can only change to completed or cancelled"
	case errors.Is(err, services.ErrNoResultFiles):
		return http.StatusBadRequest, "Cannot complete a request without uploaded result files"
	}
	return http.StatusInternalServerError, "Failed to update request"
}

// ClaimRequest marks the sample as received and assigns the request to the
// calling analyst. Exactly one of several concurrent claimers wins; the
// losers get a conflict and should refresh their list.
func ClaimRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	userID := currentUserID(c)

	if err := services.ClaimRequest(config.DB, id, userID); err != nil {
		status, message := lifecycleError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditSampleReceived,
		EntityType: "analysis_request",
		EntityID:   &id,
		Changes:    map[string]string{"from": models.StatusPending, "to": models.StatusInProgress},
		IPAddress:  c.ClientIP(),
	})

	var request models.AnalysisRequest
	if err := requestPreloads(config.DB).First(&request, "request_id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	var analyst models.User
	if err := config.DB.First(&analyst, "user_id = ?", userID).Error; err == nil {
		services.NotifyRequestClaimed(&request, &analyst)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sample received, request in progress",
		"request": request,
	})
}

// UpdateRequestByAnalyst lets the assigned analyst update comments and move
// an in_progress request to completed or cancelled
func UpdateRequestByAnalyst(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	type AnalystUpdateRequest struct {
		Status          *string `json:"status"`
		AnalystComments *string `json:"analyst_comments"`
	}

	var req AnalystUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status == nil && req.AnalystComments == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	userID := currentUserID(c)

	input := services.AnalystUpdate{
		Status:          req.Status,
		AnalystComments: req.AnalystComments,
	}
	if err := services.UpdateByAnalyst(config.DB, id, userID, input); err != nil {
		status, message := lifecycleError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	entry := services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditRequestUpdated,
		EntityType: "analysis_request",
		EntityID:   &id,
		IPAddress:  c.ClientIP(),
	}
	if req.Status != nil {
		entry.Action = models.AuditStatusUpdated
		entry.Changes = map[string]string{"from": models.StatusInProgress, "to": *req.Status}
	}
	services.RecordAudit(entry)

	var request models.AnalysisRequest
	if err := requestPreloads(config.DB).First(&request, "request_id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	if req.Status != nil {
		services.NotifyRequestFinished(&request, *req.Status)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request updated successfully",
		"request": request,
	})
}

// CancelRequest cancels a pending or in_progress request (admin only)
func CancelRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	priorStatus, err := services.CancelRequest(config.DB, id)
	if err != nil {
		status, message := lifecycleError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	userID := currentUserID(c)
	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditStatusUpdated,
		EntityType: "analysis_request",
		EntityID:   &id,
		Changes:    map[string]string{"from": priorStatus, "to": models.StatusCancelled},
		IPAddress:  c.ClientIP(),
	})

	var request models.AnalysisRequest
	if err := requestPreloads(config.DB).First(&request, "request_id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	services.NotifyRequestFinished(&request, models.StatusCancelled)

	c.JSON(http.StatusOK, gin.H{
		"message": "Request cancelled",
		"request": request,
	})
}
