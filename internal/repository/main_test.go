package repository

import (
	"testing"
	"time"

	"devlink/internal/cache"
	"devlink/internal/database"
	"devlink/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// setupTestCache points the cache package at a miniredis instance so the
// cache-aside read paths can be observed. Without it the cache client is nil
// and every read goes straight to the database.
func setupTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    email,
		Avatar:   "//www.gravatar.com/avatar/x?s=200&r=pg&d=mm",
		Password: "$2a$10$hashhashhashhashhashha",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProfile(t *testing.T, db *gorm.DB, userID uint, handle string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID: userID,
		Handle: handle,
		Status: "Developer",
		Skills: []string{"go", "rust"},
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func createTestPost(t *testing.T, db *gorm.DB, user *models.User, text string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Text:      text,
		Name:      user.Name,
		Avatar:    user.Avatar,
		UserID:    user.ID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
