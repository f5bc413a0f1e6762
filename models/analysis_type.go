package models

import "time"

// AnalysisType is one entry of the seeded analysis catalog. The catalog is
// reference data: rows are created by the seed tool and never mutated through
// the API.
type AnalysisType struct {
	AnalysisTypeID int        `gorm:"primaryKey;column:analysis_type_id" json:"analysis_type_id"`
	Code           string     `gorm:"column:code;unique" json:"code"`
	Name           string     `gorm:"column:name" json:"name"`
	Description    *string    `gorm:"column:description" json:"description,omitempty"`
	IsActive       bool       `gorm:"column:is_active;default:true" json:"is_active"`
	SortOrder      int        `gorm:"column:sort_order" json:"sort_order"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides the table name for AnalysisType
func (AnalysisType) TableName() string {
	return "analysis_types"
}
