// utils/upload.go - Result file storage layout
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadRoot returns the base directory for stored result files.
func UploadRoot() string {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	return root
}

// MaxUploadBytes returns the per-file upload limit (MAX_FILE_SIZE_MB, default 50).
func MaxUploadBytes() int64 {
	mb, err := strconv.Atoi(os.Getenv("MAX_FILE_SIZE_MB"))
	if err != nil || mb <= 0 {
		mb = 50
	}
	return int64(mb) * 1024 * 1024
}

// CreateRequestFolder ensures the per-request upload directory exists and
// returns its path. Files are grouped by upload year/month and then by
// request number, so one request's artifacts always sit in one folder.
func CreateRequestFolder(root string, requestNumber string, at time.Time) (string, error) {
	folder := filepath.Join(root, fmt.Sprintf("%04d", at.Year()), fmt.Sprintf("%02d", int(at.Month())), requestNumber)
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", err
	}
	return folder, nil
}

// StoredFilename builds a collision-free on-disk name while keeping the
// original extension. The original filename is preserved in the ledger row
// and used again on download.
func StoredFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.New().String() + ext
}
