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

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ProjectID   uint   `json:"project_id" binding:"required"`
	Assignees   []uint `json:"assignees"`
	Status      string `json:"status" binding:"omitempty,oneof=open in_progress closed"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateIssueRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Assignees   *[]uint `json:"assignees"`
	Status      string  `json:"status" binding:"omitempty,oneof=open in_progress closed"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type IssueResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	ProjectID   uint                 `json:"project_id"`
	Reporter    *types.UserSummary   `json:"reporter"`
	Assignees   []types.UserSummary  `json:"assignees"`
	Status      models.IssueStatus   `json:"status"`
	Priority    models.IssuePriority `json:"priority"`
	Comments    []CommentResponse    `json:"comments,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func issueResponse(issue models.Issue) IssueResponse {
	var reporter *types.UserSummary

	if issue.Reporter != nil {
		summary := types.NewUserSummary(*issue.Reporter)
		reporter = &summary
	}

	assignees := make([]types.UserSummary, 0, len(issue.Assignees))

	for _, assignee := range issue.Assignees {
		assignees = append(assignees, types.NewUserSummary(assignee))
	}

	comments := make([]CommentResponse, 0, len(issue.Comments))

	for _, comment := range issue.Comments {
		comments = append(comments, commentResponse(comment))
	}

	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		ProjectID:   issue.ProjectID,
		Reporter:    reporter,
		Assignees:   assignees,
		Status:      issue.Status,
		Priority:    issue.Priority,
		Comments:    comments,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

func CreateIssue(ctx *gin.Context) {
	var body CreateIssueRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	if err := db.DB.Preload("Members").First(&project, body.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	assignees, err := loadMembers(body.Assignees)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue := models.Issue{
		Title:       body.Title,
		Description: body.Description,
		ProjectID:   project.ID,
		ReporterID:  &userID,
	}

	if body.Status != "" {
		issue.Status = models.IssueStatus(body.Status)
	}

	if body.Priority != "" {
		issue.Priority = models.IssuePriority(body.Priority)
	}

	if err := db.DB.Create(&issue).Error; err != nil {
		log.Printf("Failed to create issue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	if len(assignees) > 0 {
		if err := db.DB.Model(&issue).Association("Assignees").Append(&assignees); err != nil {
			log.Printf("Failed to assign users to issue %d: %v", issue.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign users"})
			return
		}
	}

	if _, err := notifications.Dispatch(db.DB, notifications.Event{
		Kind:    notifications.IssueCreated,
		ActorID: userID,
		Project: &project,
		Issue:   &issue,
	}); err != nil {
		log.Printf("Failed to dispatch issue created notifications: %v", err)
	}

	if err := db.DB.Preload("Reporter").Preload("Assignees").First(&issue, issue.ID).Error; err != nil {
		log.Printf("Failed to reload issue %d: %v", issue.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	ctx.JSON(http.StatusCreated, issueResponse(issue))
}

// ListIssues supports filtering by status, priority and project, plus a
// free-text search over title and description. Newest first.
func ListIssues(ctx *gin.Context) {
	query := db.DB.Preload("Reporter").Preload("Assignees").Order("created_at DESC")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if priority := ctx.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var issues []models.Issue

	if err := query.Find(&issues).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	response := make([]IssueResponse, 0, len(issues))

	for _, issue := range issues {
		response = append(response, issueResponse(issue))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetIssue(ctx *gin.Context) {
	issueID, err := utils.GetIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	err = db.DB.Preload("Reporter").
		Preload("Assignees").
		Preload("Comments").
		Preload("Comments.Author").
		First(&issue, issueID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}

func UpdateIssue(ctx *gin.Context) {
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

	var body UpdateIssueRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	oldStatus := issue.Status

	if body.Title != "" {
		issue.Title = body.Title
	}

	if body.Description != nil {
		issue.Description = *body.Description
	}

	if body.Status != "" {
		issue.Status = models.IssueStatus(body.Status)
	}

	if body.Priority != "" {
		issue.Priority = models.IssuePriority(body.Priority)
	}

	if err := db.DB.Save(&issue).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	if body.Assignees != nil {
		assignees, err := loadMembers(*body.Assignees)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := db.DB.Model(&issue).Association("Assignees").Replace(&assignees); err != nil {
			log.Printf("Failed to replace assignees of issue %d: %v", issue.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignees"})
			return
		}
	}

	if err := db.DB.Preload("Reporter").Preload("Assignees").First(&issue, issue.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}

	if issue.Status != oldStatus {
		if _, err := notifications.Dispatch(db.DB, notifications.Event{
			Kind:    notifications.IssueStatusChanged,
			ActorID: userID,
			Issue:   &issue,
		}); err != nil {
			log.Printf("Failed to dispatch issue status notifications: %v", err)
		}
	}

	ctx.JSON(http.StatusOK, issueResponse(issue))
}

func DeleteIssue(ctx *gin.Context) {
	issueID, err := utils.GetIssueID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var issue models.Issue

	if err := db.DB.First(&issue, issueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	if err := db.DB.Delete(&issue).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
