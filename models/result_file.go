package models

import "time"

// ResultFile is the ledger row for one uploaded result artifact. The blob
// lives on disk under the upload root; FilePath is relative to that root so
// the tree can be relocated without rewriting rows.
type ResultFile struct {
	FileID           int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	RequestID        int        `gorm:"column:request_id;index" json:"request_id"`
	OriginalFilename string     `gorm:"column:original_filename" json:"original_filename"`
	StoredFilename   string     `gorm:"column:stored_filename" json:"stored_filename"`
	FilePath         string     `gorm:"column:file_path" json:"file_path"`
	FileSize         int64      `gorm:"column:file_size" json:"file_size"`
	ContentType      string     `gorm:"column:content_type" json:"content_type"`
	UploadedBy       int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Uploader User `gorm:"foreignKey:UploadedBy;references:UserID" json:"uploader,omitempty"`
}

// TableName overrides the table name for ResultFile
func (ResultFile) TableName() string {
	return "result_files"
}
