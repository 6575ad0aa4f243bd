package chat

import (
	"errors"

	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

// UnreadCount counts unread messages in a room that the given user did not
// send; a user's own messages are never unread to them. Messages from
// deleted accounts (sender nulled) still count as unread.
func UnreadCount(db *gorm.DB, roomID, userID uint) (int64, error) {
	var count int64

	err := db.Model(&models.Message{}).
		Where("room_id = ? AND is_read = ?", roomID, false).
		Where("sender_id IS NULL OR sender_id <> ?", userID).
		Count(&count).Error

	return count, err
}

// MarkMessageRead flips a message in the given room to read.
// Returns gorm.ErrRecordNotFound when the message does not exist in
// that room.
func MarkMessageRead(db *gorm.DB, roomID, messageID uint) error {
	result := db.Model(&models.Message{}).
		Where("id = ? AND room_id = ?", messageID, roomID).
		Update("is_read", true)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// LastMessage returns the newest message in a room for list previews, or
// nil when the room has no messages yet.
func LastMessage(db *gorm.DB, roomID uint) (*models.Message, error) {
	var message models.Message

	err := db.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Order("id DESC").
		First(&message).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &message, nil
}

// IsMember reports whether the user belongs to the room.
func IsMember(db *gorm.DB, roomID, userID uint) (bool, error) {
	var count int64

	err := db.Table("chat_room_members").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error

	return count > 0, err
}
