package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// GetDashboardStats returns dashboard statistics for the calling role
func GetDashboardStats(c *gin.Context) {
	userID := currentUserID(c)
	role := currentRole(c)

	var stats map[string]interface{}
	switch role {
	case models.RoleAdmin:
		stats = getAdminDashboard()
	case models.RoleAnalyst:
		stats = getAnalystDashboard(userID)
	default:
		stats = getChemistDashboard(userID)
	}

	stats["current_date"] = time.Now().Format("2006-01-02")

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type priorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

type analystCount struct {
	AnalystID int    `json:"analyst_id"`
	FullName  string `json:"full_name"`
	Completed int64  `json:"completed"`
}

// getAdminDashboard returns lab-wide totals and breakdowns
func getAdminDashboard() map[string]interface{} {
	stats := make(map[string]interface{})

	var total int64
	config.DB.Model(&models.AnalysisRequest{}).Count(&total)
	stats["total_requests"] = total

	var byStatus []statusCount
	config.DB.Model(&models.AnalysisRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&byStatus)
	stats["by_status"] = byStatus

	var byPriority []priorityCount
	config.DB.Model(&models.AnalysisRequest{}).
		Select("priority, COUNT(*) as count").
		Group("priority").Scan(&byPriority)
	stats["by_priority"] = byPriority

	stats["monthly_created"] = monthlyCreatedCounts(12)

	var topAnalysts []analystCount
	config.DB.Model(&models.AnalysisRequest{}).
		Select("analysis_requests.analyst_id, users.full_name, COUNT(*) as completed").
		Joins("JOIN users ON users.user_id = analysis_requests.analyst_id").
		Where("analysis_requests.status = ?", models.StatusCompleted).
		Group("analysis_requests.analyst_id, users.full_name").
		Order("completed DESC").
		Limit(5).
		Scan(&topAnalysts)
	stats["top_analysts"] = topAnalysts

	var totalUsers int64
	config.DB.Model(&models.User{}).Where("is_active = ?", true).Count(&totalUsers)
	stats["active_users"] = totalUsers

	return stats
}

// getChemistDashboard returns the chemist's own request counts
func getChemistDashboard(userID int) map[string]interface{} {
	stats := make(map[string]interface{})

	var total int64
	config.DB.Model(&models.AnalysisRequest{}).Where("chemist_id = ?", userID).Count(&total)
	stats["my_requests"] = total

	var byStatus []statusCount
	config.DB.Model(&models.AnalysisRequest{}).
		Select("status, COUNT(*) as count").
		Where("chemist_id = ?", userID).
		Group("status").Scan(&byStatus)
	stats["by_status"] = byStatus

	return stats
}

// getAnalystDashboard returns the analyst's queue view
func getAnalystDashboard(userID int) map[string]interface{} {
	stats := make(map[string]interface{})

	var unclaimed int64
	config.DB.Model(&models.AnalysisRequest{}).
		Where("status = ?", models.StatusPending).Count(&unclaimed)
	stats["unclaimed_requests"] = unclaimed

	var inProgress int64
	config.DB.Model(&models.AnalysisRequest{}).
		Where("analyst_id = ? AND status = ?", userID, models.StatusInProgress).Count(&inProgress)
	stats["my_in_progress"] = inProgress

	var completed int64
	config.DB.Model(&models.AnalysisRequest{}).
		Where("analyst_id = ? AND status = ?", userID, models.StatusCompleted).Count(&completed)
	stats["my_completed"] = completed

	return stats
}

// monthlyCreatedCounts buckets request creation dates per month in Go so the
// query stays portable across MySQL and the sqlite test databases.
func monthlyCreatedCounts(months int) []gin.H {
	since := time.Now().AddDate(0, -months+1, 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, since.Location())

	var createDates []time.Time
	config.DB.Model(&models.AnalysisRequest{}).
		Where("create_at >= ?", since).
		Pluck("create_at", &createDates)

	counts := make(map[string]int64, months)
	for _, at := range createDates {
		counts[at.Format("2006-01")]++
	}

	series := make([]gin.H, 0, months)
	cursor := since
	now := time.Now()
	for !cursor.After(now) {
		key := cursor.Format("2006-01")
		series = append(series, gin.H{"month": key, "count": counts[key]})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return series
}
