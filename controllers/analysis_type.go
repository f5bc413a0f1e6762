package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// GetAnalysisTypes returns the active analysis catalog. The catalog is
// seeded reference data, so there are no create/update endpoints.
func GetAnalysisTypes(c *gin.Context) {
	var types []models.AnalysisType
	if err := config.DB.Where("is_active = ?", true).
		Order("sort_order ASC").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analysis types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis_types": types})
}
