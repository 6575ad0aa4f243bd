package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/trackline-dev/trackline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// NewTestDB opens a fresh in-memory database with the full schema.
func NewTestDB() *gorm.DB {
	// Use a unique database name per test to avoid concurrency issues
	counter := atomic.AddInt64(&testDBCounter, 1)
	dbName := fmt.Sprintf("file:test_%d.db?mode=memory&cache=shared", counter)

	db, err := gorm.Open(sqlite.Open(dbName))
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Issue{},
		&models.Comment{},
		&models.Notification{},
		&models.ChatRoom{},
		&models.Message{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CreateUser inserts a user with sensible defaults for tests.
func CreateUser(db *gorm.DB, name string) models.User {
	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		Role:         models.RoleDeveloper,
	}

	if err := db.Create(&user).Error; err != nil {
		panic(err)
	}

	return user
}
