package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/services"
	"lab-request-api/utils"
)

// CreateRequest creates a new analysis request for the calling chemist
func CreateRequest(c *gin.Context) {
	type CreateRequestRequest struct {
		CompoundName    string `json:"compound_name" binding:"required"`
		AnalysisTypeIDs []int  `json:"analysis_type_ids" binding:"required"`
		Priority        string `json:"priority"`
		DueDate         string `json:"due_date" binding:"required"`
		Description     string `json:"description"`
		ChemistComments string `json:"chemist_comments"`
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	compoundName := utils.SanitizeInput(req.CompoundName)
	if compoundName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Compound name is required"})
		return
	}

	dueDate, err := utils.ParseDueDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be in YYYY-MM-DD format"})
		return
	}
	if utils.DueDateInPast(dueDate, time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Due date cannot be in the past"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be one of low, medium, high, urgent"})
		return
	}

	analysisTypes, err := resolveAnalysisTypes(req.AnalysisTypeIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	now := time.Now()

	request := models.AnalysisRequest{
		CompoundName: compoundName,
		Priority:     priority,
		DueDate:      dueDate,
		Status:       models.StatusPending,
		ChemistID:    userID,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if req.Description != "" {
		request.Description = &req.Description
	}
	if req.ChemistComments != "" {
		request.ChemistComments = &req.ChemistComments
	}

	// Number allocation, request row and type associations commit together
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	requestNumber, err := services.NextRequestNumber(tx)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate request number"})
		return
	}
	request.RequestNumber = requestNumber

	if err := tx.Create(&request).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	if err := tx.Model(&request).Association("AnalysisTypes").Append(&analysisTypes); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link analysis types"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditRequestCreated,
		EntityType: "analysis_request",
		EntityID:   &request.RequestID,
		Details:    request.RequestNumber,
		IPAddress:  c.ClientIP(),
	})
	services.NotifyRequestCreated(&request)

	// Load relations
	requestPreloads(config.DB).First(&request, request.RequestID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Request created successfully",
		"request": request,
	})
}

// GetRequest returns one request with its types, files and people
func GetRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	query := requestPreloads(config.DB).Where("request_id = ?", id)
	// Chemists only ever see their own requests
	if currentRole(c) == models.RoleChemist {
		query = query.Where("chemist_id = ?", currentUserID(c))
	}

	var request models.AnalysisRequest
	if err := query.First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// UpdateRequestByChemist edits a still-pending request's pre-claim fields
func UpdateRequestByChemist(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	type UpdateRequestRequest struct {
		CompoundName    *string `json:"compound_name"`
		AnalysisTypeIDs []int   `json:"analysis_type_ids"`
		Priority        *string `json:"priority"`
		DueDate         *string `json:"due_date"`
		Description     *string `json:"description"`
		ChemistComments *string `json:"chemist_comments"`
	}

	var req UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var request models.AnalysisRequest
	if err := config.DB.First(&request, "request_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	// Only the creating chemist may edit
	if request.ChemistID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creating chemist can edit this request"})
		return
	}

	// Once claimed, the chemist loses write access
	if request.Status != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Request can only be edited while pending"})
		return
	}

	updates := map[string]interface{}{}
	if req.CompoundName != nil {
		name := utils.SanitizeInput(*req.CompoundName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Compound name cannot be empty"})
			return
		}
		updates["compound_name"] = name
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Priority must be one of low, medium, high, urgent"})
			return
		}
		updates["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		dueDate, err := utils.ParseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be in YYYY-MM-DD format"})
			return
		}
		if utils.DueDateInPast(dueDate, time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Due date cannot be in the past"})
			return
		}
		updates["due_date"] = dueDate
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ChemistComments != nil {
		updates["chemist_comments"] = *req.ChemistComments
	}

	var analysisTypes []models.AnalysisType
	if req.AnalysisTypeIDs != nil {
		analysisTypes, err = resolveAnalysisTypes(req.AnalysisTypeIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	// Field changes and the type set replacement commit together. The status
	// condition on the UPDATE keeps a concurrent claim from being overwritten.
	updates["update_at"] = time.Now()
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}

	res := tx.Model(&models.AnalysisRequest{}).
		Where("request_id = ? AND status = ?", id, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Request can only be edited while pending"})
		return
	}

	if req.AnalysisTypeIDs != nil {
		if err := tx.Model(&request).Association("AnalysisTypes").Replace(&analysisTypes); err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update analysis types"})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
		return
	}

	userID := currentUserID(c)
	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditRequestUpdated,
		EntityType: "analysis_request",
		EntityID:   &request.RequestID,
		Details:    request.RequestNumber,
		IPAddress:  c.ClientIP(),
	})

	requestPreloads(config.DB).First(&request, request.RequestID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Request updated successfully",
		"request": request,
	})
}
