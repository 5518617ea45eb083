package repository

import (
	"context"
	"testing"
	"time"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// seedUsers commits users 1111 (test1) and 2222 (test2).
func seedUsers(t *testing.T, db *gorm.DB) (*models.User, *models.User) {
	t.Helper()

	u1 := &models.User{ID: 1111, Username: "test1", Email: "email1@email.com", Password: "HASHED_PASSWORD_1"}
	u2 := &models.User{ID: 2222, Username: "test2", Email: "email2@email.com", Password: "HASHED_PASSWORD_2"}
	s := database.NewSession(db)
	s.Add(u1, u2)
	require.NoError(t, s.Commit(context.Background()))
	return u1, u2
}

// seedMessage commits a message at a fixed offset from a base time so ordering is deterministic.
func seedMessage(t *testing.T, db *gorm.DB, userID uint, text string, minute int) *models.Message {
	t.Helper()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &models.Message{Text: text, UserID: userID, CreatedAt: base.Add(time.Duration(minute) * time.Minute)}
	require.NoError(t, db.Create(msg).Error)
	return msg
}
