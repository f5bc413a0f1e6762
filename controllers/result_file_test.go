package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-request-api/models"
	"lab-request-api/utils"
)

// uploadContext builds a multipart upload request with one part per entry
// under the "files" form field.
func uploadContext(t *testing.T, user models.User, requestID int, files map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if len(files) == 0 {
		require.NoError(t, mw.WriteField("note", "no attachments"))
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/files", requestID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.Request = req

	c.Set("userID", user.UserID)
	c.Set("username", user.Username)
	c.Set("role", user.Role)
	setParam(c, "id", requestID)

	return c, w
}

func TestUploadResultFilesSuccess(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)

	c, w := uploadContext(t, analyst, request.RequestID, map[string]string{
		"report.pdf": "%PDF-1.4 fake report",
		"peaks.csv":  "rt,area\n1.92,15233\n",
	})
	UploadResultFiles(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "2 file(s) uploaded", body["message"])
	assert.Len(t, body["files"], 2)

	var records []models.ResultFile
	require.NoError(t, db.Where("request_id = ?", request.RequestID).Find(&records).Error)
	require.Len(t, records, 2)

	// Blobs land under the upload root at the ledgered relative path
	for _, record := range records {
		blob := filepath.Join(utils.UploadRoot(), record.FilePath)
		info, err := os.Stat(blob)
		require.NoError(t, err, "missing blob for %s", record.OriginalFilename)
		assert.Equal(t, record.FileSize, info.Size())
		assert.NotEqual(t, record.OriginalFilename, record.StoredFilename)
	}

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditFileUploaded).Count(&auditCount).Error)
	assert.Equal(t, int64(2), auditCount)
}

func TestUploadResultFilesPendingRequest(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)

	c, w := uploadContext(t, analyst, request.RequestID, map[string]string{
		"report.pdf": "%PDF-1.4",
	})
	UploadResultFiles(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Files can only be uploaded while the request is in progress", decodeBody(t, w)["error"])
}

func TestUploadResultFilesDisallowedType(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)

	c, w := uploadContext(t, analyst, request.RequestID, map[string]string{
		"payload.exe": "MZ",
	})
	UploadResultFiles(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File type .exe is not allowed", decodeBody(t, w)["error"])

	// Nothing was written
	var count int64
	require.NoError(t, db.Model(&models.ResultFile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUploadResultFilesNoFiles(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)

	c, w := uploadContext(t, analyst, request.RequestID, nil)
	UploadResultFiles(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No files uploaded", decodeBody(t, w)["error"])
}

func TestUploadResultFilesUnknownRequest(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	analyst := createTestUser(t, db, models.RoleAnalyst)

	c, w := uploadContext(t, analyst, 9999, map[string]string{
		"report.pdf": "%PDF-1.4",
	})
	UploadResultFiles(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Request not found", decodeBody(t, w)["error"])
}

func TestListRequestFilesChemistScoping(t *testing.T) {
	db := setupTestDB(t)

	owner := createTestUser(t, db, models.RoleChemist)
	other := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, owner, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	attachTestResultFile(t, db, request, analyst)

	c, w := authedContext(t, owner, http.MethodGet, "/api/v1/requests/1/files", nil)
	setParam(c, "id", request.RequestID)
	ListRequestFiles(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["files"], 1)

	c, w = authedContext(t, other, http.MethodGet, "/api/v1/requests/1/files", nil)
	setParam(c, "id", request.RequestID)
	ListRequestFiles(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Request not found", decodeBody(t, w)["error"])
}

func TestDownloadResultFileScoping(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	t.Setenv("UPLOAD_PATH", root)

	owner := createTestUser(t, db, models.RoleChemist)
	other := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, owner, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	file := attachTestResultFile(t, db, request, analyst)

	blob := filepath.Join(root, file.FilePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(blob), 0o755))
	require.NoError(t, os.WriteFile(blob, []byte("%PDF-1.4 fake report"), 0o644))

	// Owner downloads under the original name
	c, w := authedContext(t, owner, http.MethodGet, "/api/v1/files/1/download", nil)
	setParam(c, "id", file.FileID)
	DownloadResultFile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), file.OriginalFilename)
	assert.Equal(t, "%PDF-1.4 fake report", w.Body.String())

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditFileDownloaded).Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)

	// Another chemist is refused outright
	c, w = authedContext(t, other, http.MethodGet, "/api/v1/files/1/download", nil)
	setParam(c, "id", file.FileID)
	DownloadResultFile(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", decodeBody(t, w)["error"])
}

func TestDownloadResultFileMissingBlob(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	owner := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, owner, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	file := attachTestResultFile(t, db, request, analyst)

	c, w := authedContext(t, owner, http.MethodGet, "/api/v1/files/1/download", nil)
	setParam(c, "id", file.FileID)
	DownloadResultFile(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "File is not available yet", decodeBody(t, w)["error"])
}

func TestDeleteResultFileByUploader(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	file := attachTestResultFile(t, db, request, analyst)

	c, w := authedContext(t, analyst, http.MethodDelete, "/api/v1/files/1", nil)
	setParam(c, "id", file.FileID)
	DeleteResultFile(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File deleted successfully", decodeBody(t, w)["message"])

	var count int64
	require.NoError(t, db.Model(&models.ResultFile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditFileDeleted).Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestDeleteResultFileByOtherAnalyst(t *testing.T) {
	db := setupTestDB(t)

	chemist := createTestUser(t, db, models.RoleChemist)
	uploader := createTestUser(t, db, models.RoleAnalyst)
	other := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, uploader)
	file := attachTestResultFile(t, db, request, uploader)

	c, w := authedContext(t, other, http.MethodDelete, "/api/v1/files/1", nil)
	setParam(c, "id", file.FileID)
	DeleteResultFile(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", decodeBody(t, w)["error"])
}

func TestDeleteResultFileByAdmin(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("UPLOAD_PATH", t.TempDir())

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	admin := createTestUser(t, db, models.RoleAdmin)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	file := attachTestResultFile(t, db, request, analyst)

	c, w := authedContext(t, admin, http.MethodDelete, "/api/v1/files/1", nil)
	setParam(c, "id", file.FileID)
	DeleteResultFile(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteResultFileAfterCompletion(t *testing.T) {
	db := setupTestDB(t)

	chemist := createTestUser(t, db, models.RoleChemist)
	analyst := createTestUser(t, db, models.RoleAnalyst)
	request := createTestRequest(t, db, chemist, models.StatusPending)
	claimTestRequest(t, db, &request, analyst)
	file := attachTestResultFile(t, db, request, analyst)

	require.NoError(t, db.Model(&models.AnalysisRequest{}).
		Where("request_id = ?", request.RequestID).
		Update("status", models.StatusCompleted).Error)

	c, w := authedContext(t, analyst, http.MethodDelete, "/api/v1/files/1", nil)
	setParam(c, "id", file.FileID)
	DeleteResultFile(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Files can only be deleted while the request is in progress", decodeBody(t, w)["error"])

	// The ledger row stays
	var count int64
	require.NoError(t, db.Model(&models.ResultFile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
