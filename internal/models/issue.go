package models

import "gorm.io/gorm"

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusClosed     IssueStatus = "closed"
)

type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
)

type Issue struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	ProjectID   uint          `gorm:"not null;index"`
	ReporterID  *uint         `gorm:"index"` // nulled when the reporter account is deleted
	Status      IssueStatus   `gorm:"type:varchar(20);not null;default:open"`
	Priority    IssuePriority `gorm:"type:varchar(10);not null;default:medium"`

	// Relationships
	Project   Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reporter  *User     `gorm:"foreignKey:ReporterID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Assignees []User    `gorm:"many2many:issue_assignees;constraint:OnDelete:CASCADE"`
	Comments  []Comment `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
