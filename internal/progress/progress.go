package progress

import (
	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

type Stats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Closed     int64 `json:"closed"`
}

type Snapshot struct {
	Progress int   `json:"progress"`
	Stats    Stats `json:"stats"`
}

// ForProject recomputes a project's completion percentage and per-status
// issue counts from the store. Each count is an independent query with no
// snapshot isolation; concurrent issue mutations between counts are
// tolerated. A project with zero issues reports zero progress.
func ForProject(db *gorm.DB, projectID uint) (Snapshot, error) {
	var stats Stats
	var err error

	if err = db.Model(&models.Issue{}).
		Where("project_id = ?", projectID).
		Count(&stats.Total).Error; err != nil {
		return Snapshot{}, err
	}

	if stats.Open, err = countByStatus(db, projectID, models.IssueStatusOpen); err != nil {
		return Snapshot{}, err
	}

	if stats.InProgress, err = countByStatus(db, projectID, models.IssueStatusInProgress); err != nil {
		return Snapshot{}, err
	}

	if stats.Closed, err = countByStatus(db, projectID, models.IssueStatusClosed); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{Stats: stats}

	if stats.Total > 0 {
		snapshot.Progress = int(stats.Closed * 100 / stats.Total)
	}

	return snapshot, nil
}

func countByStatus(db *gorm.DB, projectID uint, status models.IssueStatus) (int64, error) {
	var count int64

	err := db.Model(&models.Issue{}).
		Where("project_id = ? AND status = ?", projectID, status).
		Count(&count).Error

	return count, err
}
