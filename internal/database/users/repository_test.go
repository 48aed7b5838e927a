package users

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/filmrec/filmrec/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func TestCreateAndGetUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.CreateUser(user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.CreateUser(&entities.User{Username: "alice", Email: "alice@example.com"}))

	err := repo.CreateUser(&entities.User{Username: "alice", Email: "other@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestGetUser_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByID(42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSetLetterboxdFeedAndTouchLastSync(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user := &entities.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.CreateUser(user))

	require.NoError(t, repo.SetLetterboxdFeed(user.ID, "https://letterboxd.com/alice/rss/"))

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://letterboxd.com/alice/rss/", got.LetterboxdFeedURL)
	assert.Nil(t, got.LastSyncAt)

	at := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastSync(user.ID, at))

	got, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncAt)
	assert.True(t, got.LastSyncAt.Equal(at))

	// Disconnecting clears the URL
	require.NoError(t, repo.SetLetterboxdFeed(user.ID, ""))
	got, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LetterboxdFeedURL)
}

func TestGetUsersWithFeed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	connected := &entities.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, repo.CreateUser(connected))
	require.NoError(t, repo.SetLetterboxdFeed(connected.ID, "https://letterboxd.com/alice/rss/"))

	require.NoError(t, repo.CreateUser(&entities.User{Username: "bob", Email: "bob@example.com"}))

	users, err := repo.GetUsersWithFeed()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}
