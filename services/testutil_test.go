package services

import (
	"fmt"
	"testing"

	"club-management-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a private in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.MemberProfile{},
		&models.Salary{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Subscription{},
	))
	return db
}

// seedUser inserts a bare identity row for roster/registration tests.
func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s@club.test", uuid.NewString()),
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		Phone:        "12345678",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
