package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/filmrec/filmrec/internal/config"
	"github.com/filmrec/filmrec/internal/database/users"
	"github.com/filmrec/filmrec/internal/entities"
)

func setupTestService(t *testing.T) (*Service, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	service, err := NewService(users.NewRepository(db), config.Auth{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  4, // Fast hashing in tests
	})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return service, cleanup
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	user, err := service.Register("alice", "alice@example.com", "a-long-enough-password")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "a-long-enough-password", user.PasswordHash)

	authed, err := service.Authenticate("alice", "a-long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = service.Authenticate("alice", "wrong-password-entirely")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate("nobody", "a-long-enough-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterValidation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"missing username", "", "a@b.co", "a-long-enough-password", ErrUsernameRequired},
		{"missing email", "alice", "", "a-long-enough-password", ErrEmailRequired},
		{"missing password", "alice", "a@b.co", "", ErrPasswordRequired},
		{"bad username", "a!", "a@b.co", "a-long-enough-password", ErrUsernameInvalid},
		{"bad email", "alice", "not-an-email", "a-long-enough-password", ErrEmailInvalid},
		{"short password", "alice", "a@b.co", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_RegisterDuplicate(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.Register("alice", "alice@example.com", "a-long-enough-password")
	require.NoError(t, err)

	_, err = service.Register("alice", "other@example.com", "a-long-enough-password")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = service.Register("alice2", "alice@example.com", "a-long-enough-password")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_TokenRoundTrip(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	token, err := service.IssueToken(42, "alice")
	require.NoError(t, err)

	claims, err := service.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestService_ParseToken_Invalid(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed with a different secret
	other, err := NewService(nil, config.Auth{JWTSecret: "other-secret", TokenExpiry: time.Hour})
	require.NoError(t, err)
	token, err := other.IssueToken(1, "mallory")
	require.NoError(t, err)

	_, err = service.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ParseToken_Expired(t *testing.T) {
	_, cleanup := setupTestService(t)
	defer cleanup()

	expired, err := NewService(nil, config.Auth{JWTSecret: "test-secret", TokenExpiry: -time.Minute})
	require.NoError(t, err)

	token, err := expired.IssueToken(1, "alice")
	require.NoError(t, err)

	_, err = expired.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
