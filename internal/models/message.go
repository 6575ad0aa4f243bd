package models

import "gorm.io/gorm"

type Message struct {
	gorm.Model

	RoomID   uint   `gorm:"not null;index"`
	SenderID *uint  `gorm:"index"` // nulled when the sender account is deleted
	Content  string `gorm:"not null"`
	IsRead   bool   `gorm:"not null;default:false;index"`

	// Relationships
	Room   ChatRoom `gorm:"foreignKey:RoomID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Sender *User    `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
