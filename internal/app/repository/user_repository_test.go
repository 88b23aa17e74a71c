package repository

import (
	"testing"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Test User",
				Role:         model.RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				Name:         "Another User",
				Role:         model.RoleUser,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "find@example.com",
		PasswordHash: "hashedpassword",
		Name:         "Find Me",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByEmail("find@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByID(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "byid@example.com",
		PasswordHash: "hashedpassword",
		Name:         "By ID",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_Count(t *testing.T) {
	_, repo := setupUserTest(t)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	require.NoError(t, repo.Create(&model.User{
		Email:        "one@example.com",
		PasswordHash: "hash",
		Name:         "One",
		Role:         model.RoleAdmin,
	}))

	count, err = repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUserRepository_Update(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "update@example.com",
		PasswordHash: "hash",
		Name:         "Before",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	user.Name = "After"
	user.IsVerified = true
	require.NoError(t, repo.Update(user))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", found.Name)
	assert.True(t, found.IsVerified)
}

func TestUserRepository_Delete(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "delete@example.com",
		PasswordHash: "hash",
		Name:         "Delete Me",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.FindByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
