package models

import "time"

// RequestSequence backs the request-number allocator. One row per named
// counter; LastValue only ever grows. Numbers are taken by incrementing the
// row inside the caller's transaction, so concurrent creators serialize on
// the row lock instead of racing a count.
type RequestSequence struct {
	SequenceName string     `gorm:"primaryKey;column:sequence_name" json:"sequence_name"`
	LastValue    int64      `gorm:"column:last_value" json:"last_value"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides the table name for RequestSequence
func (RequestSequence) TableName() string {
	return "request_sequences"
}
