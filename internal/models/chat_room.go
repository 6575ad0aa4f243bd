package models

import "gorm.io/gorm"

type RoomType string

const (
	RoomTypeProject RoomType = "project"
	RoomTypeDirect  RoomType = "direct"
	RoomTypeGroup   RoomType = "group"
)

type ChatRoom struct {
	gorm.Model

	Name      string   `gorm:"not null"`
	RoomType  RoomType `gorm:"type:varchar(20);not null;default:project"`
	ProjectID *uint    `gorm:"index"` // set for project rooms, nil for direct/group

	// Relationships
	Project  *Project  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Members  []User    `gorm:"many2many:chat_room_members;constraint:OnDelete:CASCADE"`
	Messages []Message `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
