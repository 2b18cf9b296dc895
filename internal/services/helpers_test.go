package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/collectiq/collectiq-backend/internal/cache"
	"github.com/collectiq/collectiq-backend/internal/database"
	"github.com/collectiq/collectiq-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory SQLite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func testCache() *cache.RequestCache {
	return cache.New(5*time.Second, true)
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Password:     "x",
		DisplayName:  "tester",
		Achievements: []byte("[]"),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCollection(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *models.Collection {
	t.Helper()
	coll := models.Collection{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	require.NoError(t, db.Create(&coll).Error)
	return &coll
}

func createItem(t *testing.T, db *gorm.DB, collectionID uuid.UUID, name string, owned bool) *models.Item {
	t.Helper()
	item := models.Item{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Name:         name,
		Owned:        owned,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func mustJSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(b)
}

func unlockedSet(t *testing.T, db *gorm.DB, userID uuid.UUID) []string {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	ids, err := models.DecodeAchievements(user.Achievements)
	require.NoError(t, err)
	return ids
}
