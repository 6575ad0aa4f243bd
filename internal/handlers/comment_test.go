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
	"gorm.io/gorm"
)

func commentRouter(user models.User) *gin.Engine {
	router := gin.New()
	router.GET("/api/issues/:issue_id/comments", authAs(user), ListComments)
	router.POST("/api/issues/:issue_id/comments", authAs(user), CreateComment)
	router.DELETE("/api/comments/:comment_id", authAs(user), DeleteComment)

	return router
}

func seedIssue(t *testing.T, testDB *gorm.DB, reporter models.User, assignees ...models.User) models.Issue {
	t.Helper()

	project := models.Project{Name: "Apollo", OwnerID: reporter.ID}
	require.NoError(t, testDB.Create(&project).Error)

	issue := models.Issue{
		Title:      "Bug",
		ProjectID:  project.ID,
		ReporterID: &reporter.ID,
		Assignees:  assignees,
	}
	require.NoError(t, testDB.Create(&issue).Error)

	return issue
}

func TestCreateCommentNotifies(t *testing.T) {
	testDB := setupTest(t)

	reporter := testutil.CreateUser(testDB, "reporter")
	alice := testutil.CreateUser(testDB, "alice")
	issue := seedIssue(t, testDB, reporter, alice)

	// Alice comments: the reporter is notified, alice is not.
	router := commentRouter(alice)

	recorder := performRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/issues/%d/comments", issue.ID), gin.H{"content": "On it"})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response CommentResponse
	decodeJSON(t, recorder, &response)
	assert.Equal(t, "On it", response.Content)
	require.NotNil(t, response.Author)
	assert.Equal(t, alice.ID, response.Author.ID)

	var rows []models.Notification
	require.NoError(t, testDB.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, reporter.ID, rows[0].RecipientID)
	assert.Equal(t, models.NotificationIssueCommented, rows[0].Type)
	assert.Equal(t, "New comment on issue 'Bug'", rows[0].Message)
}

func TestCreateCommentMissingIssue(t *testing.T) {
	testDB := setupTest(t)
	alice := testutil.CreateUser(testDB, "alice")

	router := commentRouter(alice)

	recorder := performRequest(t, router, http.MethodPost,
		"/api/issues/999/comments", gin.H{"content": "lost"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	testDB := setupTest(t)

	reporter := testutil.CreateUser(testDB, "reporter")
	alice := testutil.CreateUser(testDB, "alice")
	issue := seedIssue(t, testDB, reporter)

	comment := models.Comment{
		IssueID:  issue.ID,
		AuthorID: &reporter.ID,
		Content:  "mine",
	}
	require.NoError(t, testDB.Create(&comment).Error)

	recorder := performRequest(t, commentRouter(alice), http.MethodDelete,
		fmt.Sprintf("/api/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = performRequest(t, commentRouter(reporter), http.MethodDelete,
		fmt.Sprintf("/api/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	var count int64
	require.NoError(t, testDB.Model(&models.Comment{}).
		Where("id = ?", comment.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListCommentsOrdered(t *testing.T) {
	testDB := setupTest(t)

	reporter := testutil.CreateUser(testDB, "reporter")
	issue := seedIssue(t, testDB, reporter)

	for _, content := range []string{"first", "second"} {
		require.NoError(t, testDB.Create(&models.Comment{
			IssueID:  issue.ID,
			AuthorID: &reporter.ID,
			Content:  content,
		}).Error)
	}

	router := commentRouter(reporter)

	recorder := performRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/issues/%d/comments", issue.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response []CommentResponse
	decodeJSON(t, recorder, &response)
	require.Len(t, response, 2)
	assert.Equal(t, "first", response[0].Content)
	assert.Equal(t, "second", response[1].Content)
}
