package models

import "time"

// Audit actions recorded by the service. The audit trail is append-only;
// rows are never updated or deleted.
const (
	AuditLogin          = "login"
	AuditLogout         = "logout"
	AuditRequestCreated = "request_created"
	AuditSampleReceived = "sample_received"
	AuditStatusUpdated  = "status_updated"
	AuditRequestUpdated = "request_updated"
	AuditFileUploaded   = "file_uploaded"
	AuditFileDownloaded = "file_downloaded"
	AuditFileDeleted    = "file_deleted"
	AuditUserCreated    = "user_created"
	AuditUserUpdated    = "user_updated"
)

type AuditLog struct {
	AuditLogID int        `gorm:"primaryKey;column:audit_log_id" json:"audit_log_id"`
	UserID     *int       `gorm:"column:user_id;index" json:"user_id"`
	Action     string     `gorm:"column:action;index" json:"action"`
	EntityType *string    `gorm:"column:entity_type" json:"entity_type,omitempty"`
	EntityID   *int       `gorm:"column:entity_id" json:"entity_id,omitempty"`
	Changes    *string    `gorm:"column:changes" json:"changes,omitempty"` // JSON-encoded
	Details    *string    `gorm:"column:details" json:"details,omitempty"`
	IPAddress  *string    `gorm:"column:ip_address" json:"ip_address,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName overrides the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
