package repository_test

import (
	"context"
	"testing"
	"time"

	"blitzit/internal/model"
	"blitzit/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	return gormDB, mock
}

var userColumns = []string{"id", "email", "hashed_password", "name", "telegram_chat_id", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	user := &model.User{
		ID:             userID,
		Email:          "test@example.com",
		HashedPassword: "hashed_password",
		Name:           "Test User",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectCommit()

	// Act
	err := userRepo.Create(context.Background(), user)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	// Act
	err := userRepo.Create(context.Background(), &model.User{Email: "taken@example.com"})

	// Assert
	assert.ErrorIs(t, err, repository.ErrDuplicateUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	userID := uuid.New()
	email := "test@example.com"
	createdAt := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(userID.String(), email, "hashed_password", "Test User", nil, createdAt))

	// Act
	user, err := userRepo.FindByEmail(context.Background(), email)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.Nil(t, user.TelegramChatID)
	assert.True(t, createdAt.Equal(user.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	// Пользователь не найден
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	user, err := userRepo.FindByEmail(context.Background(), "nonexistent@example.com")

	// Assert
	assert.NoError(t, err) // отсутствие записи не считается ошибкой
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_Error(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE email = .* LIMIT`).
		WillReturnError(assert.AnError)

	// Act
	user, err := userRepo.FindByEmail(context.Background(), "test@example.com")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	userRepo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "users" WHERE id = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	// Act
	user, err := userRepo.GetByID(context.Background(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}
