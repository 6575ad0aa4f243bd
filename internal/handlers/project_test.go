package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/testutil"
)

func projectRouter(user models.User) *gin.Engine {
	router := gin.New()
	router.GET("/api/projects/:project_id", GetProject)
	router.POST("/api/projects", authAs(user), CreateProject)
	router.PATCH("/api/projects/:project_id", authAs(user), UpdateProject)
	router.DELETE("/api/projects/:project_id", authAs(user), DeleteProject)

	return router
}

func TestCreateProject(t *testing.T) {
	testDB := setupTest(t)

	owner := testutil.CreateUser(testDB, "owner")
	alice := testutil.CreateUser(testDB, "alice")
	bob := testutil.CreateUser(testDB, "bob")

	router := projectRouter(owner)

	recorder := performRequest(t, router, http.MethodPost, "/api/projects", gin.H{
		"name":       "Apollo",
		"members":    []uint{alice.ID, bob.ID},
		"start_date": "2026-01-15",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response ProjectResponse
	decodeJSON(t, recorder, &response)

	assert.Equal(t, "Apollo", response.Name)
	assert.Equal(t, owner.ID, response.Owner.ID)
	assert.Equal(t, 2, response.MemberCount)
	require.NotNil(t, response.StartDate)
	assert.Equal(t, "2026-01-15", *response.StartDate)
	assert.Zero(t, response.Progress)

	// The discussion room is provisioned with owner and members enrolled.
	var room models.ChatRoom
	require.NoError(t, testDB.Preload("Members").
		Where("project_id = ?", response.ID).First(&room).Error)
	assert.Equal(t, "Apollo - Discussion", room.Name)
	assert.Equal(t, models.RoomTypeProject, room.RoomType)
	assert.Len(t, room.Members, 3)

	// Members are told they were added; the owner triggered it and is not.
	var rows []models.Notification
	require.NoError(t, testDB.Order("recipient_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, alice.ID, rows[0].RecipientID)
	assert.Equal(t, bob.ID, rows[1].RecipientID)

	for _, row := range rows {
		assert.Equal(t, models.NotificationProjectJoined, row.Type)
		assert.Equal(t, "You have been added to project 'Apollo'", row.Message)
	}
}

func TestCreateProjectUnknownMember(t *testing.T) {
	testDB := setupTest(t)
	owner := testutil.CreateUser(testDB, "owner")

	router := projectRouter(owner)

	recorder := performRequest(t, router, http.MethodPost, "/api/projects", gin.H{
		"name":    "Apollo",
		"members": []uint{999},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetProjectProgress(t *testing.T) {
	testDB := setupTest(t)
	owner := testutil.CreateUser(testDB, "owner")

	project := models.Project{Name: "Apollo", OwnerID: owner.ID}
	require.NoError(t, testDB.Create(&project).Error)

	statuses := []models.IssueStatus{
		models.IssueStatusClosed,
		models.IssueStatusOpen,
		models.IssueStatusOpen,
		models.IssueStatusInProgress,
	}

	for _, status := range statuses {
		require.NoError(t, testDB.Create(&models.Issue{
			Title:     "Issue",
			ProjectID: project.ID,
			Status:    status,
		}).Error)
	}

	router := projectRouter(owner)

	recorder := performRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/projects/%d", project.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response ProjectResponse
	decodeJSON(t, recorder, &response)

	assert.Equal(t, 25, response.Progress)
	assert.Equal(t, int64(4), response.Stats.Total)
	assert.Equal(t, int64(2), response.Stats.Open)
	assert.Equal(t, int64(1), response.Stats.InProgress)
	assert.Equal(t, int64(1), response.Stats.Closed)
	assert.Len(t, response.Issues, 4)
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	testDB := setupTest(t)
	owner := testutil.CreateUser(testDB, "owner")
	intruder := testutil.CreateUser(testDB, "intruder")

	project := models.Project{Name: "Apollo", OwnerID: owner.ID}
	require.NoError(t, testDB.Create(&project).Error)

	router := projectRouter(intruder)

	recorder := performRequest(t, router, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d", project.ID), gin.H{"name": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var got models.Project
	require.NoError(t, testDB.First(&got, project.ID).Error)
	assert.Equal(t, "Apollo", got.Name)
}

func TestUpdateProjectNotifiesMembersAndOwner(t *testing.T) {
	testDB := setupTest(t)
	owner := testutil.CreateUser(testDB, "owner")
	alice := testutil.CreateUser(testDB, "alice")

	project := models.Project{
		Name:    "Apollo",
		OwnerID: owner.ID,
		Members: []models.User{alice},
	}
	require.NoError(t, testDB.Create(&project).Error)

	// The owner renames the project: members are notified, the actor is not.
	router := gin.New()
	router.PATCH("/api/projects/:project_id", authAs(owner), UpdateProject)

	recorder := performRequest(t, router, http.MethodPatch,
		fmt.Sprintf("/api/projects/%d", project.ID), gin.H{"name": "Apollo II"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var rows []models.Notification
	require.NoError(t, testDB.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, alice.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationGeneral, rows[0].Type)
	assert.Equal(t, "Project 'Apollo II' has been updated", rows[0].Message)
}

func TestDeleteProject(t *testing.T) {
	testDB := setupTest(t)
	owner := testutil.CreateUser(testDB, "owner")

	project := models.Project{Name: "Apollo", OwnerID: owner.ID}
	require.NoError(t, testDB.Create(&project).Error)
	require.NoError(t, testDB.Create(&models.Issue{
		Title:     "Bug",
		ProjectID: project.ID,
	}).Error)

	router := projectRouter(owner)

	recorder := performRequest(t, router, http.MethodDelete,
		fmt.Sprintf("/api/projects/%d", project.ID), nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	var count int64
	require.NoError(t, testDB.Model(&models.Project{}).
		Where("id = ?", project.ID).Count(&count).Error)
	assert.Zero(t, count)
}
