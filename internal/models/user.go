package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleMaintainer UserRole = "maintainer"
	RoleDeveloper  UserRole = "developer"
	RoleViewer     UserRole = "viewer"
)

type User struct {
	gorm.Model

	Name         string   `gorm:"not null"`
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:developer"`
	Bio          string

	// Relationships
	OwnedProjects  []Project      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ReportedIssues []Issue        `gorm:"foreignKey:ReporterID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments       []Comment      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Notifications  []Notification `gorm:"foreignKey:RecipientID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SentMessages   []Message      `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
