package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	IssueID  uint   `gorm:"not null;index"`
	AuthorID *uint  `gorm:"index"` // nulled when the author account is deleted
	Content  string `gorm:"not null"`

	// Relationships
	Issue  Issue `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
