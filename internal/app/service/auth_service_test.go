package service

import (
	"testing"
	"time"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/dkwon/comfystore-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, testJWTSecret, 15*time.Minute, 168*time.Hour)

	return authService, testDB
}

func TestAuthService_Register(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.Register("first@example.com", "password123", "First User")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsVerified)

	// The first account becomes an admin
	assert.Equal(t, model.RoleAdmin, user.Role)

	second, err := authService.Register("second@example.com", "password123", "Second User")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, second.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.Register("dup@example.com", "password123", "User")
	require.NoError(t, err)

	_, err = authService.Register("dup@example.com", "password456", "Another")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login_RequiresVerifiedEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)

	_, _, err = authService.Login("user@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// Verify with a known code, then login succeeds
	util.StoreEmailVerificationCode(user.Email, "123456")
	_, err = authService.VerifyEmail(user.Email, "123456")
	require.NoError(t, err)

	loggedIn, tokens, err := authService.Login("user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := util.ValidateToken(tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)
	testDB.Model(&model.User{}).Where("id = ?", user.ID).Update("is_verified", true)

	_, _, err = authService.Login("user@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user reads the same as a bad password
	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)

	util.StoreEmailVerificationCode(user.Email, "654321")

	_, err = authService.VerifyEmail(user.Email, "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	verified, err := authService.VerifyEmail(user.Email, "654321")
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedAt)

	// A code is single-use and a verified account cannot verify again
	_, err = authService.VerifyEmail(user.Email, "654321")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestAuthService_VerifyEmail_UnknownUser(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.VerifyEmail("nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ResendVerification(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)

	require.NoError(t, authService.ResendVerification(user.Email))

	testDB.Model(&model.User{}).Where("id = ?", user.ID).Update("is_verified", true)
	err = authService.ResendVerification(user.Email)
	assert.ErrorIs(t, err, ErrAlreadyVerified)

	err = authService.ResendVerification("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, err := authService.Register("user@example.com", "password123", "User")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	// An empty name leaves the profile untouched
	unchanged, err := authService.UpdateProfile(user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Name", unchanged.Name)
}
