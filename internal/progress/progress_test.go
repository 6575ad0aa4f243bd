package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackline-dev/trackline/internal/models"
	"github.com/trackline-dev/trackline/internal/testutil"
	"gorm.io/gorm"
)

func seedProject(t *testing.T, db *gorm.DB, name string, statuses ...models.IssueStatus) models.Project {
	t.Helper()

	owner := testutil.CreateUser(db, "owner-"+name)
	project := models.Project{Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Create(&project).Error)

	for _, status := range statuses {
		issue := models.Issue{
			Title:     "Issue",
			ProjectID: project.ID,
			Status:    status,
		}
		require.NoError(t, db.Create(&issue).Error)
	}

	return project
}

func TestForProjectEmpty(t *testing.T) {
	db := testutil.NewTestDB()
	project := seedProject(t, db, "Empty")

	snapshot, err := ForProject(db, project.ID)
	require.NoError(t, err)

	assert.Zero(t, snapshot.Progress)
	assert.Equal(t, Stats{}, snapshot.Stats)
}

func TestForProjectRoundsDown(t *testing.T) {
	db := testutil.NewTestDB()
	project := seedProject(t, db, "Apollo",
		models.IssueStatusClosed,
		models.IssueStatusOpen,
		models.IssueStatusOpen,
		models.IssueStatusInProgress,
	)

	snapshot, err := ForProject(db, project.ID)
	require.NoError(t, err)

	// 1 of 4 closed: exactly 25.
	assert.Equal(t, 25, snapshot.Progress)
	assert.Equal(t, Stats{Total: 4, Open: 2, InProgress: 1, Closed: 1}, snapshot.Stats)

	// 1 of 3 closed truncates to 33, never rounds up.
	other := seedProject(t, db, "Mercury",
		models.IssueStatusClosed,
		models.IssueStatusOpen,
		models.IssueStatusOpen,
	)

	snapshot, err = ForProject(db, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, snapshot.Progress)
}

func TestForProjectAllClosed(t *testing.T) {
	db := testutil.NewTestDB()
	project := seedProject(t, db, "Apollo", models.IssueStatusClosed, models.IssueStatusClosed)

	snapshot, err := ForProject(db, project.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, snapshot.Progress)
	assert.Equal(t, snapshot.Stats.Total,
		snapshot.Stats.Open+snapshot.Stats.InProgress+snapshot.Stats.Closed)
}

func TestForProjectScopedToProject(t *testing.T) {
	db := testutil.NewTestDB()
	project := seedProject(t, db, "Apollo", models.IssueStatusOpen)

	// A second project's issues must not bleed into the first one's counts.
	other := models.Project{Name: "Gemini", OwnerID: 1}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&models.Issue{
		Title:     "Elsewhere",
		ProjectID: other.ID,
		Status:    models.IssueStatusClosed,
	}).Error)

	snapshot, err := ForProject(db, project.ID)
	require.NoError(t, err)

	assert.Zero(t, snapshot.Progress)
	assert.Equal(t, Stats{Total: 1, Open: 1}, snapshot.Stats)
}
