package handlers

import (
	"errors"
	"log"
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

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID        uint               `json:"id"`
	IssueID   uint               `json:"issue_id"`
	Author    *types.UserSummary `json:"author"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
}

func commentResponse(comment models.Comment) CommentResponse {
	var author *types.UserSummary

	if comment.Author != nil {
		summary := types.NewUserSummary(*comment.Author)
		author = &summary
	}

	return CommentResponse{
		ID:        comment.ID,
		IssueID:   comment.IssueID,
		Author:    author,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

func ListComments(ctx *gin.Context) {
	issueID, err := utils.GetIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comments []models.Comment

	if err := db.DB.Preload("Author").Where("issue_id = ?", issueID).Order("created_at").Order("id").Find(&comments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, commentResponse(comment))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateComment(ctx *gin.Context) {
	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := utils.GetIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.Preload("Assignees").First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	comment := models.Comment{
		IssueID:  issue.ID,
		AuthorID: &userID,
		Content:  body.Content,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if _, err := notifications.Dispatch(db.DB, notifications.Event{
		Kind:    notifications.CommentCreated,
		ActorID: userID,
		Issue:   &issue,
	}); err != nil {
		log.Printf("Failed to dispatch comment notifications: %v", err)
	}

	if err := db.DB.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		log.Printf("Failed to reload comment %d: %v", comment.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	ctx.JSON(http.StatusCreated, commentResponse(comment))
}

func DeleteComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if comment.AuthorID == nil || *comment.AuthorID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete a comment"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
