package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/notifications"
	"github.com/trackline-dev/trackline/internal/progress"
	"github.com/trackline-dev/trackline/internal/types"
	"github.com/trackline-dev/trackline/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Members        []uint   `json:"members"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	FundsAllocated *float64 `json:"funds_allocated"`
}

type UpdateProjectRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Members        *[]uint  `json:"members"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	FundsAllocated *float64 `json:"funds_allocated"`
}

type IssueSummary struct {
	ID       uint                 `json:"id"`
	Title    string               `json:"title"`
	Status   models.IssueStatus   `json:"status"`
	Priority models.IssuePriority `json:"priority"`
}

type ProjectResponse struct {
	ID             uint                `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Owner          types.UserSummary   `json:"owner"`
	Members        []types.UserSummary `json:"members"`
	MemberCount    int                 `json:"member_count"`
	StartDate      *string             `json:"start_date"`
	EndDate        *string             `json:"end_date"`
	FundsAllocated *float64            `json:"funds_allocated"`
	Issues         []IssueSummary      `json:"issues"`
	Progress       int                 `json:"progress"`
	Stats          progress.Stats      `json:"stats"`
	CreatedAt      time.Time           `json:"created_at"`
}

func parseDate(raw *string) (*datatypes.Date, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse("2006-01-02", *raw)

	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *raw)
	}

	date := datatypes.Date(parsed)
	return &date, nil
}

func formatDate(date *datatypes.Date) *string {
	if date == nil {
		return nil
	}

	formatted := time.Time(*date).Format("2006-01-02")
	return &formatted
}

// loadMembers resolves member IDs to user rows, rejecting unknown IDs.
func loadMembers(memberIDs []uint) ([]models.User, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	var users []models.User

	if err := db.DB.Where("id IN ?", memberIDs).Find(&users).Error; err != nil {
		return nil, err
	}

	if len(users) != len(uniqueIDs(memberIDs)) {
		return nil, errors.New("one or more member IDs do not exist")
	}

	return users, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return unique
}

func projectResponse(project models.Project) ProjectResponse {
	members := make([]types.UserSummary, 0, len(project.Members))

	for _, member := range project.Members {
		members = append(members, types.NewUserSummary(member))
	}

	issues := make([]IssueSummary, 0, len(project.Issues))

	for _, issue := range project.Issues {
		issues = append(issues, IssueSummary{
			ID:       issue.ID,
			Title:    issue.Title,
			Status:   issue.Status,
			Priority: issue.Priority,
		})
	}

	snapshot, err := progress.ForProject(db.DB, project.ID)

	if err != nil {
		log.Printf("Failed to compute progress for project %d: %v", project.ID, err)
	}

	return ProjectResponse{
		ID:             project.ID,
		Name:           project.Name,
		Description:    project.Description,
		Owner:          types.NewUserSummary(project.Owner),
		Members:        members,
		MemberCount:    len(members),
		StartDate:      formatDate(project.StartDate),
		EndDate:        formatDate(project.EndDate),
		FundsAllocated: project.FundsAllocated,
		Issues:         issues,
		Progress:       snapshot.Progress,
		Stats:          snapshot.Stats,
		CreatedAt:      project.CreatedAt,
	}
}

func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	startDate, err := parseDate(body.StartDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endDate, err := parseDate(body.EndDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	members, err := loadMembers(body.Members)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{
		Name:           body.Name,
		Description:    body.Description,
		OwnerID:        userID,
		StartDate:      startDate,
		EndDate:        endDate,
		FundsAllocated: body.FundsAllocated,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	if len(members) > 0 {
		if err := db.DB.Model(&project).Association("Members").Append(&members); err != nil {
			log.Printf("Failed to add members to project %d: %v", project.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add project members"})
			return
		}
	}

	createProjectChatRoom(project, members)

	// Best-effort side effect: the project is already committed, so a
	// notification failure is logged inside Dispatch and not surfaced.
	project.Members = members

	if _, err := notifications.Dispatch(db.DB, notifications.Event{
		Kind:    notifications.ProjectCreated,
		ActorID: userID,
		Project: &project,
	}); err != nil {
		log.Printf("Failed to dispatch project created notifications: %v", err)
	}

	if err := db.DB.Preload("Owner").First(&project, project.ID).Error; err != nil {
		log.Printf("Failed to reload project %d: %v", project.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	project.Members = members

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

// createProjectChatRoom provisions the project discussion room and enrolls
// the owner and members. Failures are logged only; the backfill job will
// create any room missed here.
func createProjectChatRoom(project models.Project, members []models.User) {
	projectID := project.ID

	room := models.ChatRoom{
		Name:      fmt.Sprintf("%s - Discussion", project.Name),
		RoomType:  models.RoomTypeProject,
		ProjectID: &projectID,
	}

	if err := db.DB.Create(&room).Error; err != nil {
		log.Printf("Failed to create chat room for project %d: %v", project.ID, err)
		return
	}

	roomMembers := append([]models.User{{Model: gorm.Model{ID: project.OwnerID}}}, members...)

	if err := db.DB.Model(&room).Association("Members").Append(&roomMembers); err != nil {
		log.Printf("Failed to add members to chat room %d: %v", room.ID, err)
	}
}

func ListProjects(ctx *gin.Context) {
	var projects []models.Project

	if err := db.DB.Preload("Owner").Preload("Members").Preload("Issues").Find(&projects).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.Preload("Owner").Preload("Members").Preload("Issues").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project

	if err := db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	startDate, err := parseDate(body.StartDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	endDate, err := parseDate(body.EndDate)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project.Name = body.Name
	project.Description = body.Description

	if startDate != nil {
		project.StartDate = startDate
	}

	if endDate != nil {
		project.EndDate = endDate
	}

	if body.FundsAllocated != nil {
		project.FundsAllocated = body.FundsAllocated
	}

	if err := db.DB.Save(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	if body.Members != nil {
		members, err := loadMembers(*body.Members)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := db.DB.Model(&project).Association("Members").Replace(&members); err != nil {
			log.Printf("Failed to replace members of project %d: %v", project.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project members"})
			return
		}
	}

	if err := db.DB.Preload("Owner").Preload("Members").Preload("Issues").First(&project, project.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	if _, err := notifications.Dispatch(db.DB, notifications.Event{
		Kind:    notifications.ProjectUpdated,
		ActorID: userID,
		Project: &project,
	}); err != nil {
		log.Printf("Failed to dispatch project updated notifications: %v", err)
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	var project models.Project

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	// Issues and chat rooms cascade at the store level.
	if err := db.DB.Delete(&project).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
