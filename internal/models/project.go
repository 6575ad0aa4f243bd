package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name           string `gorm:"not null"`
	Description    string
	OwnerID        uint `gorm:"not null;index"`
	StartDate      *datatypes.Date
	EndDate        *datatypes.Date
	FundsAllocated *float64 `gorm:"type:numeric(12,2)"`

	// Relationships
	Owner     User       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members   []User     `gorm:"many2many:project_members;constraint:OnDelete:CASCADE"`
	Issues    []Issue    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ChatRooms []ChatRoom `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
