package notifications

import (
	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

// MarkRead flips a notification owned by recipientID to read.
// Returns gorm.ErrRecordNotFound when no such notification exists for
// that recipient.
func MarkRead(db *gorm.DB, notificationID, recipientID uint) error {
	return setRead(db, notificationID, recipientID, true)
}

// MarkUnread flips a notification owned by recipientID back to unread.
func MarkUnread(db *gorm.DB, notificationID, recipientID uint) error {
	return setRead(db, notificationID, recipientID, false)
}

func setRead(db *gorm.DB, notificationID, recipientID uint, read bool) error {
	result := db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", read)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkAllRead marks every unread notification for a recipient as read and
// reports how many rows changed. Calling it again immediately yields zero.
func MarkAllRead(db *gorm.DB, recipientID uint) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)

	return result.RowsAffected, result.Error
}

// UnreadCount returns how many unread notifications a recipient has.
func UnreadCount(db *gorm.DB, recipientID uint) (int64, error) {
	var count int64

	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error

	return count, err
}
