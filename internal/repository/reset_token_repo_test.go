package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/models"
)

func setupResetTokenDB(t *testing.T) (*gorm.DB, models.User) {
	t.Helper()

	db := setupTestDB(t, &models.User{}, &models.PasswordResetToken{})

	user := newTestUser("reset@example.com", "USR-RESETTST")
	require.NoError(t, db.Create(&user).Error)
	return db, user
}

func TestResetTokenRepositoryConsume(t *testing.T) {
	db, user := setupResetTokenDB(t)
	repo := NewPasswordResetTokenRepository(db)

	now := time.Now()
	token := models.PasswordResetToken{UserID: user.ID, Token: "valid-token", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), &token))

	userID, err := repo.Consume(context.Background(), "valid-token", "new-hash", now)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	// The password hash is actually replaced.
	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.Equal(t, "new-hash", stored.PasswordHash)

	// The token row is gone.
	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestResetTokenRepositoryConsumeIsSingleUse(t *testing.T) {
	db, user := setupResetTokenDB(t)
	repo := NewPasswordResetTokenRepository(db)

	now := time.Now()
	token := models.PasswordResetToken{UserID: user.ID, Token: "once-token", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), &token))

	_, err := repo.Consume(context.Background(), "once-token", "first-hash", now)
	require.NoError(t, err)

	_, err = repo.Consume(context.Background(), "once-token", "second-hash", now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.Equal(t, "first-hash", stored.PasswordHash)
}

func TestResetTokenRepositoryConsumeExpired(t *testing.T) {
	db, user := setupResetTokenDB(t)
	repo := NewPasswordResetTokenRepository(db)

	now := time.Now()
	token := models.PasswordResetToken{UserID: user.ID, Token: "stale-token", ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(context.Background(), &token))

	_, err := repo.Consume(context.Background(), "stale-token", "new-hash", now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The original credential stays in place.
	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.Equal(t, "hash", stored.PasswordHash)
}

func TestResetTokenRepositoryConsumeUnknownToken(t *testing.T) {
	db, _ := setupResetTokenDB(t)
	repo := NewPasswordResetTokenRepository(db)

	_, err := repo.Consume(context.Background(), "never-issued", "new-hash", time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
