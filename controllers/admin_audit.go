// controllers/admin_audit.go - Audit trail viewer
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// GetAuditLogs returns the audit trail, newest first (admin only).
// Filters: action, user_id, from/to (YYYY-MM-DD).
func GetAuditLogs(c *gin.Context) {
	maxLimit := maxPageSizeFromEnv("ADMIN_MAX_PAGE_SIZE", 500)
	page, limit, offset := parsePagination(c, maxLimit)

	query := config.DB.Model(&models.AuditLog{}).Preload("User")

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if userID := c.Query("user_id"); userID != "" {
		id, err := strconv.Atoi(userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id filter"})
			return
		}
		query = query.Where("user_id = ?", id)
	}
	if from := c.Query("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be in YYYY-MM-DD format"})
			return
		}
		query = query.Where("create_at >= ?", fromDate)
	}
	if to := c.Query("to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be in YYYY-MM-DD format"})
			return
		}
		query = query.Where("create_at < ?", toDate.AddDate(0, 0, 1))
	}

	var totalCount int64
	query.Count(&totalCount)

	var logs []models.AuditLog
	if err := query.Order("create_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"audit_logs": logs,
		"pagination": paginationMeta(page, limit, totalCount),
	})
}
