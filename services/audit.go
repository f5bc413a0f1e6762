package services

import (
	"encoding/json"
	"log"
	"time"

	"lab-request-api/config"
	"lab-request-api/models"
)

// AuditEntry describes one action for the audit trail. Changes is marshaled
// to JSON when present; pass a map or struct with the old/new values.
type AuditEntry struct {
	UserID     *int
	Action     string
	EntityType string
	EntityID   *int
	Changes    interface{}
	Details    string
	IPAddress  string
}

// RecordAudit appends one row to the audit trail. Best-effort by contract:
// failures are logged and swallowed so an audit problem can never block or
// roll back the business write it describes.
func RecordAudit(entry AuditEntry) {
	now := time.Now()

	row := models.AuditLog{
		UserID:   entry.UserID,
		Action:   entry.Action,
		CreateAt: &now,
	}
	if entry.EntityType != "" {
		row.EntityType = &entry.EntityType
	}
	row.EntityID = entry.EntityID
	if entry.Details != "" {
		row.Details = &entry.Details
	}
	if entry.IPAddress != "" {
		row.IPAddress = &entry.IPAddress
	}
	if entry.Changes != nil {
		encoded, err := json.Marshal(entry.Changes)
		if err != nil {
			log.Printf("Warning: failed to encode audit changes for %s: %v", entry.Action, err)
		} else {
			s := string(encoded)
			row.Changes = &s
		}
	}

	if err := config.DB.Create(&row).Error; err != nil {
		log.Printf("Warning: failed to record audit action %s: %v", entry.Action, err)
	}
}
