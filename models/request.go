package models

import "time"

// Lifecycle states of an analysis request. A request starts as pending, moves
// to in_progress when an analyst claims it, and ends in completed or
// cancelled. The terminal states never transition again.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priority values accepted on an analysis request.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriority reports whether priority is one of the accepted values.
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TerminalStatus reports whether status admits no further transition.
func TerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

type AnalysisRequest struct {
	RequestID       int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	RequestNumber   string     `gorm:"column:request_number;unique" json:"request_number"`
	CompoundName    string     `gorm:"column:compound_name" json:"compound_name"`
	Priority        string     `gorm:"column:priority" json:"priority"`
	DueDate         time.Time  `gorm:"column:due_date" json:"due_date"`
	Description     *string    `gorm:"column:description" json:"description,omitempty"`
	ChemistComments *string    `gorm:"column:chemist_comments" json:"chemist_comments,omitempty"`
	AnalystComments *string    `gorm:"column:analyst_comments" json:"analyst_comments,omitempty"`
	Status          string     `gorm:"column:status;index" json:"status"`
	ChemistID       int        `gorm:"column:chemist_id;index" json:"chemist_id"`
	AnalystID       *int       `gorm:"column:analyst_id;index" json:"analyst_id"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	// Relations
	Chemist       User           `gorm:"foreignKey:ChemistID;references:UserID" json:"chemist,omitempty"`
	Analyst       *User          `gorm:"foreignKey:AnalystID;references:UserID" json:"analyst,omitempty"`
	AnalysisTypes []AnalysisType `gorm:"many2many:request_analysis_types;foreignKey:RequestID;joinForeignKey:RequestID;References:AnalysisTypeID;joinReferences:AnalysisTypeID" json:"analysis_types,omitempty"`
	ResultFiles   []ResultFile   `gorm:"foreignKey:RequestID;references:RequestID" json:"result_files,omitempty"`
}

// TableName overrides the table name for AnalysisRequest
func (AnalysisRequest) TableName() string {
	return "analysis_requests"
}
