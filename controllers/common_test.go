package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/utils"
)

var (
	testUserCounter    int64
	testRequestCounter int64
)

// setupTestDB swaps config.DB for an in-memory database for one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AnalysisType{},
		&models.AnalysisRequest{},
		&models.ResultFile{},
		&models.AuditLog{},
		&models.RequestSequence{},
		&models.Notification{},
	))

	previous := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = previous
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()

	n := atomic.AddInt64(&testUserCounter, 1)
	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)

	now := time.Now()
	user := models.User{
		Username: fmt.Sprintf("%s%d", role, n),
		Email:    fmt.Sprintf("%s%d@lab.local", role, n),
		Password: hashed,
		FullName: fmt.Sprintf("Test %s %d", role, n),
		Role:     role,
		IsActive: true,
		CreateAt: &now,
		UpdateAt: &now,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestAnalysisType(t *testing.T, db *gorm.DB, code string, sortOrder int) models.AnalysisType {
	t.Helper()

	now := time.Now()
	at := models.AnalysisType{
		Code:      code,
		Name:      code + " analysis",
		IsActive:  true,
		SortOrder: sortOrder,
		CreateAt:  &now,
	}
	require.NoError(t, db.Create(&at).Error)
	return at
}

func createTestRequest(t *testing.T, db *gorm.DB, chemist models.User, status string) models.AnalysisRequest {
	t.Helper()

	now := time.Now()
	request := models.AnalysisRequest{
		RequestNumber: fmt.Sprintf("REQ-%04d", atomic.AddInt64(&testRequestCounter, 1)),
		CompoundName:  "4-nitroaniline",
		Priority:      models.PriorityMedium,
		DueDate:       now.Add(96 * time.Hour),
		Status:        status,
		ChemistID:     chemist.UserID,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func claimTestRequest(t *testing.T, db *gorm.DB, request *models.AnalysisRequest, analyst models.User) {
	t.Helper()

	require.NoError(t, db.Model(&models.AnalysisRequest{}).
		Where("request_id = ?", request.RequestID).
		Updates(map[string]interface{}{
			"status":     models.StatusInProgress,
			"analyst_id": analyst.UserID,
		}).Error)
	request.Status = models.StatusInProgress
	request.AnalystID = &analyst.UserID
}

// authedContext builds a request context the way AuthMiddleware would leave
// it after verifying the user.
func authedContext(t *testing.T, user models.User, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req

	c.Set("userID", user.UserID)
	c.Set("username", user.Username)
	c.Set("role", user.Role)

	return c, w
}

func setParam(c *gin.Context, key string, value int) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: fmt.Sprintf("%d", value)})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
