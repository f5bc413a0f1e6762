package controllers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-request-api/models"
)

func TestGetAllRequestsUnscoped(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)
	chemistA := createTestUser(t, db, models.RoleChemist)
	chemistB := createTestUser(t, db, models.RoleChemist)
	createTestRequest(t, db, chemistA, models.StatusPending)
	createTestRequest(t, db, chemistB, models.StatusPending)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests", nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["requests"], 2)
}

func TestGetAllRequestsAdminCap(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)

	// The admin console cap is higher than the regular listing cap
	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests?limit=400", nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	pagination := decodeBody(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(400), pagination["per_page"])

	c, w = authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests?limit=9999", nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	pagination = decodeBody(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(500), pagination["per_page"])
}

func TestGetAllRequestsSearch(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)
	chemist := createTestUser(t, db, models.RoleChemist)
	needle := createTestRequest(t, db, chemist, models.StatusPending)
	createTestRequest(t, db, chemist, models.StatusPending)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests?search="+needle.RequestNumber, nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	requests := decodeBody(t, w)["requests"].([]interface{})
	require.Len(t, requests, 1)
	assert.Equal(t, needle.RequestNumber, requests[0].(map[string]interface{})["request_number"])
}

func TestGetAllRequestsChemistFilter(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)
	chemistA := createTestUser(t, db, models.RoleChemist)
	chemistB := createTestUser(t, db, models.RoleChemist)
	createTestRequest(t, db, chemistA, models.StatusPending)
	createTestRequest(t, db, chemistB, models.StatusPending)
	createTestRequest(t, db, chemistB, models.StatusPending)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests?chemist_id="+strconv.Itoa(chemistB.UserID), nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["requests"], 2)
}

func TestGetAllRequestsInvalidStatusFilter(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/requests?status=lost", nil)
	GetAllRequests(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status filter", decodeBody(t, w)["error"])
}

func TestExportRequestsCSV(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)
	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	hplc := createTestAnalysisType(t, db, "HPLC", 1)
	nmr := createTestAnalysisType(t, db, "NMR", 2)

	request := createTestRequest(t, db, chemist, models.StatusPending)
	require.NoError(t, db.Model(&request).Association("AnalysisTypes").Append(&hplc, &nmr))
	claimTestRequest(t, db, &request, analyst)
	attachTestResultFile(t, db, request, analyst)

	completedAt := time.Now()
	require.NoError(t, db.Model(&models.AnalysisRequest{}).
		Where("request_id = ?", request.RequestID).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"completed_at": completedAt,
		}).Error)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/export/requests", nil)
	ExportRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, []string{
		"request_number", "compound_name", "status", "priority", "analysis_types",
		"chemist", "analyst", "due_date", "created_at", "completed_at", "result_files",
	}, header)

	row := rows[1]
	assert.Equal(t, request.RequestNumber, row[0])
	assert.Equal(t, request.CompoundName, row[1])
	assert.Equal(t, models.StatusCompleted, row[2])
	assert.ElementsMatch(t, []string{"HPLC", "NMR"}, strings.Split(row[4], "|"))
	assert.Equal(t, chemist.FullName, row[5])
	assert.Equal(t, analyst.FullName, row[6])
	assert.NotEmpty(t, row[9], "completed_at column")
	assert.Equal(t, "1", row[10])
}

func TestExportRequestsStatusFilter(t *testing.T) {
	db := setupTestDB(t)

	admin := createTestUser(t, db, models.RoleAdmin)
	chemist := createTestUser(t, db, models.RoleChemist)
	createTestRequest(t, db, chemist, models.StatusPending)
	createTestRequest(t, db, chemist, models.StatusCancelled)

	c, w := authedContext(t, admin, http.MethodGet, "/api/v1/admin/export/requests?status=cancelled", nil)
	ExportRequests(c)

	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.StatusCancelled, rows[1][2])
}
