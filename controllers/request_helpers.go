// controllers/request_helpers.go - Shared helpers for request endpoints
package controllers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
)

// currentUserID returns the authenticated user id set by AuthMiddleware.
func currentUserID(c *gin.Context) int {
	value, _ := c.Get("userID")
	id, _ := value.(int)
	return id
}

// currentRole returns the authenticated role set by AuthMiddleware.
func currentRole(c *gin.Context) string {
	value, _ := c.Get("role")
	role, _ := value.(string)
	return role
}

// requestPreloads applies the standard eager loads for request responses.
func requestPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Chemist").
		Preload("Analyst").
		Preload("AnalysisTypes").
		Preload("ResultFiles").
		Preload("ResultFiles.Uploader")
}

// resolveAnalysisTypes loads the active catalog entries for the given ids.
// Every id must resolve; unknown or inactive ids fail the whole set so a
// request can never reference a type outside the catalog.
func resolveAnalysisTypes(ids []int) ([]models.AnalysisType, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one analysis type is required")
	}

	var types []models.AnalysisType
	if err := config.DB.Where("analysis_type_id IN ? AND is_active = ?", ids, true).Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to load analysis types: %w", err)
	}

	found := make(map[int]bool, len(types))
	for _, t := range types {
		found[t.AnalysisTypeID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("unknown analysis type id %d", id)
		}
	}

	return types, nil
}

func maxPageSizeFromEnv(name string, fallback int) int {
	max, err := strconv.Atoi(os.Getenv(name))
	if err != nil || max < 1 {
		return fallback
	}
	return max
}

// parsePagination reads page/limit query parameters and clamps the limit to
// maxLimit. Oversized limits are clamped rather than rejected, so a caller
// asking for 10000 rows gets at most the configured maximum.
func parsePagination(c *gin.Context, maxLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = (page - 1) * limit
	return page, limit, offset
}

// paginationMeta builds the standard pagination envelope for list responses.
func paginationMeta(page, limit int, totalCount int64) gin.H {
	totalPages := (totalCount + int64(limit) - 1) / int64(limit)
	return gin.H{
		"current_page": page,
		"per_page":     limit,
		"total_count":  totalCount,
		"total_pages":  totalPages,
		"has_next":     page < int(totalPages),
		"has_prev":     page > 1,
	}
}
