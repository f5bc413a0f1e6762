// controllers/admin_request.go - Admin request console
package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
)

// adminRequestQuery applies the admin console filters to a request query.
func adminRequestQuery(c *gin.Context, query *gorm.DB) (*gorm.DB, bool) {
	status := c.Query("status")
	priority := c.Query("priority")
	chemistID := c.Query("chemist_id")
	analystID := c.Query("analyst_id")
	search := c.Query("search")

	if status != "" {
		if status != models.StatusPending && status != models.StatusInProgress &&
			status != models.StatusCompleted && status != models.StatusCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return nil, false
		}
		query = query.Where("status = ?", status)
	}
	if priority != "" {
		if !models.ValidPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
			return nil, false
		}
		query = query.Where("priority = ?", priority)
	}
	if chemistID != "" {
		id, err := strconv.Atoi(chemistID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chemist_id filter"})
			return nil, false
		}
		query = query.Where("chemist_id = ?", id)
	}
	if analystID != "" {
		id, err := strconv.Atoi(analystID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analyst_id filter"})
			return nil, false
		}
		if id == 0 {
			query = query.Where("analyst_id IS NULL")
		} else {
			query = query.Where("analyst_id = ?", id)
		}
	}
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("request_number LIKE ? OR compound_name LIKE ?", searchTerm, searchTerm)
	}

	return query, true
}

// GetAllRequests returns the unscoped request list for the admin console.
// The admin cap is higher than the regular listing cap but still bounded.
func GetAllRequests(c *gin.Context) {
	maxLimit := maxPageSizeFromEnv("ADMIN_MAX_PAGE_SIZE", 500)
	page, limit, offset := parsePagination(c, maxLimit)

	query, ok := adminRequestQuery(c, requestPreloads(config.DB))
	if !ok {
		return
	}

	var totalCount int64
	query.Model(&models.AnalysisRequest{}).Count(&totalCount)

	var requests []models.AnalysisRequest
	if err := query.Order("create_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"requests":   requests,
		"pagination": paginationMeta(page, limit, totalCount),
	})
}

// ExportRequests streams the filtered request list as CSV
func ExportRequests(c *gin.Context) {
	query, ok := adminRequestQuery(c, requestPreloads(config.DB))
	if !ok {
		return
	}

	var requests []models.AnalysisRequest
	if err := query.Order("create_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	filename := fmt.Sprintf("requests-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{
		"request_number", "compound_name", "status", "priority", "analysis_types",
		"chemist", "analyst", "due_date", "created_at", "completed_at", "result_files",
	})

	for _, request := range requests {
		codes := make([]string, 0, len(request.AnalysisTypes))
		for _, t := range request.AnalysisTypes {
			codes = append(codes, t.Code)
		}

		analyst := ""
		if request.Analyst != nil {
			analyst = request.Analyst.FullName
		}
		createAt := ""
		if request.CreateAt != nil {
			createAt = request.CreateAt.Format(time.RFC3339)
		}
		completedAt := ""
		if request.CompletedAt != nil {
			completedAt = request.CompletedAt.Format(time.RFC3339)
		}

		writer.Write([]string{
			request.RequestNumber,
			request.CompoundName,
			request.Status,
			request.Priority,
			strings.Join(codes, "|"),
			request.Chemist.FullName,
			analyst,
			request.DueDate.Format("2006-01-02"),
			createAt,
			completedAt,
			strconv.Itoa(len(request.ResultFiles)),
		})
	}
}
