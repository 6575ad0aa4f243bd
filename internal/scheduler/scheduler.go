package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/trackline-dev/trackline/db"
	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/gorm"
)

// Scheduler runs periodic maintenance. Its single job today is backfilling
// discussion rooms for projects that are missing one, which also covers
// rooms whose creation failed during the project request.
type Scheduler struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

const defaultInterval = time.Hour

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval: defaultInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the backfill once immediately, then on every tick.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	go func() {
		s.backfillChatRooms()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.backfillChatRooms()
			}
		}
	}()
}

// Stop cancels the maintenance loop.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cancel()
}

// backfillChatRooms creates a discussion room for every project that has
// none and enrolls the owner and members.
func (s *Scheduler) backfillChatRooms() {
	var projects []models.Project

	err := db.DB.Preload("Members").
		Where("id NOT IN (?)", db.DB.Model(&models.ChatRoom{}).
			Select("project_id").
			Where("project_id IS NOT NULL AND room_type = ?", models.RoomTypeProject)).
		Find(&projects).Error

	if err != nil {
		log.Printf("Failed to load projects for chat room backfill: %v", err)
		return
	}

	if len(projects) == 0 {
		return
	}

	created := 0

	for _, project := range projects {
		projectID := project.ID

		room := models.ChatRoom{
			Name:      fmt.Sprintf("%s - Discussion", project.Name),
			RoomType:  models.RoomTypeProject,
			ProjectID: &projectID,
		}

		if err := db.DB.Create(&room).Error; err != nil {
			log.Printf("Failed to backfill chat room for project %d: %v", project.ID, err)
			continue
		}

		members := append(project.Members, models.User{Model: gorm.Model{ID: project.OwnerID}})

		if err := db.DB.Model(&room).Association("Members").Append(&members); err != nil {
			log.Printf("Failed to add members to backfilled room %d: %v", room.ID, err)
			continue
		}

		created++
	}

	log.Printf("Chat room backfill created %d rooms for %d projects", created, len(projects))
}

// Global scheduler instance
var globalScheduler *Scheduler

// Initialize creates and starts the global scheduler
func Initialize() {
	globalScheduler = NewScheduler()
	globalScheduler.Start()
}

// Shutdown stops the global scheduler
func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}
