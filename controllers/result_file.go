// controllers/result_file.go - Result file upload/download
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/services"
	"lab-request-api/utils"
)

// Result artifacts are reports and instrument exports.
var allowedResultExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".csv":  true,
	".txt":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".zip":  true,
}

// UploadResultFiles attaches one or more result files to an in_progress
// request. The blob is written first and removed again if the ledger row
// fails, so the ledger never references a missing file.
func UploadResultFiles(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	// Check the request exists and accepts uploads
	var request models.AnalysisRequest
	if err := config.DB.First(&request, "request_id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}
	if request.Status != models.StatusInProgress {
		c.JSON(http.StatusConflict, gin.H{"error": "Files can only be uploaded while the request is in progress"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	maxSize := utils.MaxUploadBytes()
	for _, file := range files {
		if file.Size > maxSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("File %s exceeds the %dMB limit", file.Filename, maxSize/(1024*1024)),
			})
			return
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedResultExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File type %s is not allowed", ext)})
			return
		}
	}

	now := time.Now()
	folder, err := utils.CreateRequestFolder(utils.UploadRoot(), request.RequestNumber, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}

	userID := currentUserID(c)
	uploaded := make([]models.ResultFile, 0, len(files))

	for _, file := range files {
		storedName := utils.StoredFilename(file.Filename)
		fullPath := filepath.Join(folder, storedName)

		if err := c.SaveUploadedFile(file, fullPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		relPath, err := filepath.Rel(utils.UploadRoot(), fullPath)
		if err != nil {
			relPath = fullPath
		}

		record := models.ResultFile{
			RequestID:        request.RequestID,
			OriginalFilename: file.Filename,
			StoredFilename:   storedName,
			FilePath:         relPath,
			FileSize:         file.Size,
			ContentType:      file.Header.Get("Content-Type"),
			UploadedBy:       userID,
			CreateAt:         &now,
		}
		if err := config.DB.Create(&record).Error; err != nil {
			// Remove the blob so the ledger and disk stay in sync
			os.Remove(fullPath)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file info"})
			return
		}

		services.RecordAudit(services.AuditEntry{
			UserID:     &userID,
			Action:     models.AuditFileUploaded,
			EntityType: "result_file",
			EntityID:   &record.FileID,
			Details:    fmt.Sprintf("%s -> %s", file.Filename, request.RequestNumber),
			IPAddress:  c.ClientIP(),
		})

		uploaded = append(uploaded, record)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("%d file(s) uploaded", len(uploaded)),
		"files":   uploaded,
	})
}

// ListRequestFiles returns the file ledger for one request
func ListRequestFiles(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	query := config.DB.Where("request_id = ?", requestID)
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

	var files []models.ResultFile
	if err := config.DB.Preload("Uploader").Where("request_id = ?", request.RequestID).
		Order("create_at ASC").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

// DownloadResultFile streams a stored result file under its original name
func DownloadResultFile(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	// Get file info
	var file models.ResultFile
	if err := config.DB.First(&file, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch file"})
		return
	}

	var request models.AnalysisRequest
	if err := config.DB.First(&request, "request_id = ?", file.RequestID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}

	// Check permissions
	if currentRole(c) == models.RoleChemist && request.ChemistID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	fullPath := filepath.Join(utils.UploadRoot(), file.FilePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File is not available yet"})
		return
	}

	userID := currentUserID(c)
	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditFileDownloaded,
		EntityType: "result_file",
		EntityID:   &file.FileID,
		Details:    file.OriginalFilename,
		IPAddress:  c.ClientIP(),
	})

	// Set headers for download
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.OriginalFilename))
	c.Header("Content-Type", "application/octet-stream")

	c.File(fullPath)
}

// DeleteResultFile removes a file while the request is still in progress.
// Only the uploading analyst or an admin may delete.
func DeleteResultFile(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file id"})
		return
	}

	// Get file
	var file models.ResultFile
	if err := config.DB.First(&file, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch file"})
		return
	}

	// Check ownership
	userID := currentUserID(c)
	if currentRole(c) != models.RoleAdmin && file.UploadedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	// Files are evidence once the request leaves in_progress
	var request models.AnalysisRequest
	if err := config.DB.First(&request, "request_id = ?", file.RequestID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
		return
	}
	if request.Status != models.StatusInProgress {
		c.JSON(http.StatusConflict, gin.H{"error": "Files can only be deleted while the request is in progress"})
		return
	}

	if err := config.DB.Delete(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	// Blob removal is best-effort once the row is gone
	os.Remove(filepath.Join(utils.UploadRoot(), file.FilePath))

	services.RecordAudit(services.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditFileDeleted,
		EntityType: "result_file",
		EntityID:   &file.FileID,
		Details:    file.OriginalFilename,
		IPAddress:  c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
