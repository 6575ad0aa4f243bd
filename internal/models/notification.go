package models

import "gorm.io/gorm"

type NotificationType string

const (
	NotificationIssueAssigned      NotificationType = "issue_assigned"
	NotificationIssueCommented     NotificationType = "issue_commented"
	NotificationIssueStatusChanged NotificationType = "issue_status_changed"
	NotificationProjectJoined      NotificationType = "project_joined"
	NotificationGeneral            NotificationType = "general"
)

// Notification rows are written only by the fan-out engine as a side effect
// of another entity's mutation. Only IsRead is ever updated afterwards.
type Notification struct {
	gorm.Model

	RecipientID uint             `gorm:"not null;index"`
	ActorID     *uint            `gorm:"index"` // nulled when the acting account is deleted
	Type        NotificationType `gorm:"type:varchar(50);not null;default:general"`
	Message     string           `gorm:"not null"`
	IsRead      bool             `gorm:"not null;default:false;index"`

	// Relationships
	Recipient User  `gorm:"foreignKey:RecipientID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Actor     *User `gorm:"foreignKey:ActorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
