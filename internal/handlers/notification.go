package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/notifications"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID        uint                    `json:"id"`
	Actor     *types.UserSummary      `json:"actor"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

func notificationResponse(notification models.Notification) NotificationResponse {
	var actor *types.UserSummary

	if notification.Actor != nil {
		summary := types.NewUserSummary(*notification.Actor)
		actor = &summary
	}

	return NotificationResponse{
		ID:        notification.ID,
		Actor:     actor,
		Type:      notification.Type,
		Message:   notification.Message,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
	}
}

// ListNotifications returns the caller's notifications, newest first,
// together with the unread total.
func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var rows []models.Notification

	err = db.DB.Preload("Actor").
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	unread, err := notifications.UnreadCount(db.DB, userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationResponse, 0, len(rows))

	for _, row := range rows {
		response = append(response, notificationResponse(row))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": response,
		"unread_count":  unread,
	})
}

func MarkNotificationRead(ctx *gin.Context) {
	setNotificationRead(ctx, true)
}

func MarkNotificationUnread(ctx *gin.Context) {
	setNotificationRead(ctx, false)
}

func setNotificationRead(ctx *gin.Context, read bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if read {
		err = notifications.MarkRead(db.DB, notificationID, userID)
	} else {
		err = notifications.MarkUnread(db.DB, notificationID, userID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		}
		return
	}

	status := "marked as read"

	if !read {
		status = "marked as unread"
	}

	ctx.JSON(http.StatusOK, gin.H{"status": status})
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	updated, err := notifications.MarkAllRead(db.DB, userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"updated": updated})
}
