// controllers/admin_user.go - Account administration
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

// CreateUser creates a new account (admin only)
func CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"full_name" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username := utils.SanitizeInput(req.Username)
	if !utils.ValidateUsername(username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-32 characters (a-z, 0-9, dot, dash, underscore)"})
		return
	}
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of chemist, analyst, admin"})
		return
	}

	// Check uniqueness
	var existing models.User
	if err := config.DB.Where("username = ? OR email = ?", username, req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already in use"})
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	now := time.Now()
	user := models.User{
		Username: username,
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
		CreateAt: &now,
		UpdateAt: &now,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	adminID := currentUserID(c)
	services.RecordAudit(services.AuditEntry{
		UserID:     &adminID,
		Action:     models.AuditUserCreated,
		EntityType: "user",
		EntityID:   &user.UserID,
		Details:    user.Username,
		IPAddress:  c.ClientIP(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// GetUsers returns a paginated account list with filters (admin only)
func GetUsers(c *gin.Context) {
	maxLimit := maxPageSizeFromEnv("MAX_PAGE_SIZE", 100)
	page, limit, offset := parsePagination(c, maxLimit)

	role := c.Query("role")
	isActive := c.Query("is_active")
	search := c.Query("search")

	query := config.DB.Model(&models.User{})
	if role != "" {
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
			return
		}
		query = query.Where("role = ?", role)
	}
	if isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active filter"})
			return
		}
		query = query.Where("is_active = ?", active)
	}
	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR full_name LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var totalCount int64
	query.Count(&totalCount)

	var users []models.User
	if err := query.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"users":      users,
		"pagination": paginationMeta(page, limit, totalCount),
	})
}

// GetUser returns one account (admin only)
func GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser edits account fields; deactivation replaces deletion (admin only)
func UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	type UpdateUserRequest struct {
		Email    *string `json:"email"`
		FullName *string `json:"full_name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	changes := map[string]interface{}{}
	if req.Email != nil && *req.Email != user.Email {
		if !utils.ValidateEmail(*req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		var existing models.User
		if err := config.DB.Where("email = ? AND user_id <> ?", *req.Email, user.UserID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		changes["email"] = map[string]string{"from": user.Email, "to": *req.Email}
		user.Email = *req.Email
	}
	if req.FullName != nil && *req.FullName != user.FullName {
		changes["full_name"] = map[string]string{"from": user.FullName, "to": *req.FullName}
		user.FullName = *req.FullName
	}
	if req.Role != nil && *req.Role != user.Role {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be one of chemist, analyst, admin"})
			return
		}
		changes["role"] = map[string]string{"from": user.Role, "to": *req.Role}
		user.Role = *req.Role
	}
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		changes["is_active"] = map[string]bool{"from": user.IsActive, "to": *req.IsActive}
		user.IsActive = *req.IsActive
	}

	if len(changes) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes", "user": user})
		return
	}

	now := time.Now()
	user.UpdateAt = &now
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	adminID := currentUserID(c)
	services.RecordAudit(services.AuditEntry{
		UserID:     &adminID,
		Action:     models.AuditUserUpdated,
		EntityType: "user",
		EntityID:   &user.UserID,
		Changes:    changes,
		IPAddress:  c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    user,
	})
}
