package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/testutil"
)

func TestBackfillChatRooms(t *testing.T) {
	db.DB = testutil.NewTestDB()

	owner := testutil.CreateUser(db.DB, "owner")
	alice := testutil.CreateUser(db.DB, "alice")

	// One project already has its room, one is missing it.
	covered := models.Project{Name: "Covered", OwnerID: owner.ID}
	require.NoError(t, db.DB.Create(&covered).Error)

	coveredID := covered.ID
	require.NoError(t, db.DB.Create(&models.ChatRoom{
		Name:      "Covered - Discussion",
		RoomType:  models.RoomTypeProject,
		ProjectID: &coveredID,
	}).Error)

	missing := models.Project{
		Name:    "Missing",
		OwnerID: owner.ID,
		Members: []models.User{alice},
	}
	require.NoError(t, db.DB.Create(&missing).Error)

	scheduler := NewScheduler()
	scheduler.backfillChatRooms()

	var rooms []models.ChatRoom
	require.NoError(t, db.DB.Preload("Members").
		Where("project_id = ?", missing.ID).Find(&rooms).Error)
	require.Len(t, rooms, 1)

	assert.Equal(t, "Missing - Discussion", rooms[0].Name)
	assert.Equal(t, models.RoomTypeProject, rooms[0].RoomType)
	assert.Len(t, rooms[0].Members, 2)

	// A second run finds nothing to do.
	scheduler.backfillChatRooms()

	var count int64
	require.NoError(t, db.DB.Model(&models.ChatRoom{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
