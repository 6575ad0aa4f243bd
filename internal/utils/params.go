package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "project_id")
}

func GetIssueID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "issue_id")
}

func GetCommentID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "comment_id")
}

func GetNotificationID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "notification_id")
}

func GetRoomID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "room_id")
}

func GetMessageID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "message_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "user_id")
}
