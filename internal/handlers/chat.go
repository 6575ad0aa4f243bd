package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/chat"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
	"gorm.io/gorm"
)

type CreateChatRoomRequest struct {
	Name      string `json:"name" binding:"required"`
	RoomType  string `json:"room_type" binding:"omitempty,oneof=project direct group"`
	ProjectID *uint  `json:"project_id"`
	Members   []uint `json:"members"`
}

type CreateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID        uint               `json:"id"`
	RoomID    uint               `json:"room_id"`
	Sender    *types.UserSummary `json:"sender"`
	Content   string             `json:"content"`
	IsRead    bool               `json:"is_read"`
	CreatedAt time.Time          `json:"created_at"`
}

type ChatRoomResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	RoomType    models.RoomType     `json:"room_type"`
	ProjectID   *uint               `json:"project_id"`
	Members     []types.UserSummary `json:"members"`
	LastMessage *MessageResponse    `json:"last_message"`
	UnreadCount int64               `json:"unread_count"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func messageResponse(message models.Message) MessageResponse {
	var sender *types.UserSummary

	if message.Sender != nil {
		summary := types.NewUserSummary(*message.Sender)
		sender = &summary
	}

	return MessageResponse{
		ID:        message.ID,
		RoomID:    message.RoomID,
		Sender:    sender,
		Content:   message.Content,
		IsRead:    message.IsRead,
		CreatedAt: message.CreatedAt,
	}
}

func chatRoomResponse(room models.ChatRoom, userID uint) ChatRoomResponse {
	members := make([]types.UserSummary, 0, len(room.Members))

	for _, member := range room.Members {
		members = append(members, types.NewUserSummary(member))
	}

	response := ChatRoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		RoomType:  room.RoomType,
		ProjectID: room.ProjectID,
		Members:   members,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}

	last, err := chat.LastMessage(db.DB, room.ID)

	if err != nil {
		log.Printf("Failed to load last message for room %d: %v", room.ID, err)
	} else if last != nil {
		message := messageResponse(*last)
		response.LastMessage = &message
	}

	unread, err := chat.UnreadCount(db.DB, room.ID, userID)

	if err != nil {
		log.Printf("Failed to count unread messages for room %d: %v", room.ID, err)
	} else {
		response.UnreadCount = unread
	}

	return response
}

// requireRoomMembership loads a room and verifies the caller belongs to it.
func requireRoomMembership(ctx *gin.Context) (models.ChatRoom, uint, bool) {
	var room models.ChatRoom

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return room, 0, false
	}

	roomID, err := utils.GetRoomID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return room, 0, false
	}

	if err := db.DB.Preload("Members").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat room"})
		}
		return room, 0, false
	}

	member, err := chat.IsMember(db.DB, room.ID, userID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat room"})
		return room, 0, false
	}

	if !member {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this chat room"})
		return room, 0, false
	}

	return room, userID, true
}

// ListChatRooms returns the rooms the caller belongs to, with a preview of
// the latest message and the caller's unread count per room.
func ListChatRooms(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var rooms []models.ChatRoom

	err = db.DB.Preload("Members").
		Joins("JOIN chat_room_members ON chat_room_members.chat_room_id = chat_rooms.id").
		Where("chat_room_members.user_id = ?", userID).
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat rooms"})
		return
	}

	response := make([]ChatRoomResponse, 0, len(rooms))

	for _, room := range rooms {
		response = append(response, chatRoomResponse(room, userID))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateChatRoom(ctx *gin.Context) {
	var body CreateChatRoomRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	members, err := loadMembers(body.Members)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := models.ChatRoom{
		Name:      body.Name,
		ProjectID: body.ProjectID,
	}

	if body.RoomType != "" {
		room.RoomType = models.RoomType(body.RoomType)
	}

	if err := db.DB.Create(&room).Error; err != nil {
		log.Printf("Failed to create chat room: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat room"})
		return
	}

	// The creator is always enrolled.
	roomMembers := append([]models.User{{Model: gorm.Model{ID: userID}}}, members...)

	if err := db.DB.Model(&room).Association("Members").Append(&roomMembers); err != nil {
		log.Printf("Failed to add members to chat room %d: %v", room.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add chat room members"})
		return
	}

	if err := db.DB.Preload("Members").First(&room, room.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat room"})
		return
	}

	ctx.JSON(http.StatusCreated, chatRoomResponse(room, userID))
}

func JoinChatRoom(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	roomID, err := utils.GetRoomID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var room models.ChatRoom

	if err := db.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat room"})
		}
		return
	}

	member := models.User{Model: gorm.Model{ID: userID}}

	if err := db.DB.Model(&room).Association("Members").Append(&member); err != nil {
		log.Printf("Failed to join chat room %d: %v", room.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join chat room"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "joined"})
}

func LeaveChatRoom(ctx *gin.Context) {
	room, userID, ok := requireRoomMembership(ctx)

	if !ok {
		return
	}

	member := models.User{Model: gorm.Model{ID: userID}}

	if err := db.DB.Model(&room).Association("Members").Delete(&member); err != nil {
		log.Printf("Failed to leave chat room %d: %v", room.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave chat room"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "left"})
}

func ListMessages(ctx *gin.Context) {
	room, _, ok := requireRoomMembership(ctx)

	if !ok {
		return
	}

	var messages []models.Message

	err := db.DB.Preload("Sender").
		Where("room_id = ?", room.ID).
		Order("created_at").
		Order("id").
		Find(&messages).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve messages"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))

	for _, message := range messages {
		response = append(response, messageResponse(message))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateMessage(ctx *gin.Context) {
	var body CreateMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	room, userID, ok := requireRoomMembership(ctx)

	if !ok {
		return
	}

	message := models.Message{
		RoomID:   room.ID,
		SenderID: &userID,
		Content:  body.Content,
	}

	if err := db.DB.Create(&message).Error; err != nil {
		log.Printf("Failed to create message: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if err := db.DB.Preload("Sender").First(&message, message.ID).Error; err != nil {
		log.Printf("Failed to reload message %d: %v", message.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	response := messageResponse(message)

	BroadcastMessage(room.ID, response)

	ctx.JSON(http.StatusCreated, response)
}

func MarkMessageRead(ctx *gin.Context) {
	room, _, ok := requireRoomMembership(ctx)

	if !ok {
		return
	}

	messageID, err := utils.GetMessageID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := chat.MarkMessageRead(db.DB, room.ID, messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update message"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}
