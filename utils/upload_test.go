package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRoot(t *testing.T) {
	t.Setenv("UPLOAD_PATH", "/srv/lab/uploads")
	assert.Equal(t, "/srv/lab/uploads", UploadRoot())

	t.Setenv("UPLOAD_PATH", "")
	assert.Equal(t, "./uploads", UploadRoot())
}

func TestMaxUploadBytes(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "")
	assert.Equal(t, int64(50*1024*1024), MaxUploadBytes())

	t.Setenv("MAX_FILE_SIZE_MB", "5")
	assert.Equal(t, int64(5*1024*1024), MaxUploadBytes())

	t.Setenv("MAX_FILE_SIZE_MB", "-1")
	assert.Equal(t, int64(50*1024*1024), MaxUploadBytes())
}

func TestCreateRequestFolder(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	folder, err := CreateRequestFolder(root, "REQ-0042", at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2026", "08", "REQ-0042"), folder)

	info, err := os.Stat(folder)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is a no-op on the existing directory
	again, err := CreateRequestFolder(root, "REQ-0042", at)
	require.NoError(t, err)
	assert.Equal(t, folder, again)
}

func TestStoredFilename(t *testing.T) {
	a := StoredFilename("Report Final.PDF")
	b := StoredFilename("Report Final.PDF")

	assert.True(t, strings.HasSuffix(a, ".pdf"), a)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, " ")
}
