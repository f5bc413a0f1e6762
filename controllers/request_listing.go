// controllers/request_listing.go - Request listing
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// ListRequests returns a paginated list of requests with filters. Chemists
// are always scoped to their own requests; the scope comes from the
// authenticated role, so no query parameter can widen it.
func ListRequests(c *gin.Context) {
	userID := currentUserID(c)
	role := currentRole(c)

	maxLimit := maxPageSizeFromEnv("MAX_PAGE_SIZE", 100)
	page, limit, offset := parsePagination(c, maxLimit)

	status := c.Query("status")
	priority := c.Query("priority")
	analystID := c.Query("analyst_id")
	sortOrder := c.DefaultQuery("sort_order", "desc")

	if status != "" && status != models.StatusPending && status != models.StatusInProgress &&
		status != models.StatusCompleted && status != models.StatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}
	if priority != "" && !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
		return
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	// Build base query
	query := requestPreloads(config.DB)

	// Permission-based filtering
	if role == models.RoleChemist {
		query = query.Where("chemist_id = ?", userID)
	}

	// Apply filters
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if analystID != "" {
		id, err := strconv.Atoi(analystID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analyst_id filter"})
			return
		}
		if id == 0 {
			// analyst_id=0 selects unclaimed requests
			query = query.Where("analyst_id IS NULL")
		} else {
			query = query.Where("analyst_id = ?", id)
		}
	}

	// Get total count for pagination
	var totalCount int64
	query.Model(&models.AnalysisRequest{}).Count(&totalCount)

	var requests []models.AnalysisRequest
	orderClause := "create_at " + strings.ToUpper(sortOrder)
	if err := query.Order(orderClause).Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"requests":   requests,
		"pagination": paginationMeta(page, limit, totalCount),
		"filters": gin.H{
			"status":     status,
			"priority":   priority,
			"analyst_id": analystID,
		},
	})
}
