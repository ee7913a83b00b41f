package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// PasswordResetTokenRepository persists the single-use password recovery
// tokens. Repeated forgot-password requests stack tokens; earlier tokens stay
// valid until they expire or one of them is consumed.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// Consume atomically validates the token, replaces the owning account's
	// password hash and deletes the token row. A token is valid only while
	// unexpired and unconsumed; unknown and expired tokens are rejected with
	// gorm.ErrRecordNotFound without distinguishing the two.
	Consume(ctx context.Context, token string, newPasswordHash string, now time.Time) (uint, error)
}

type passwordResetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository instantiates a GORM-backed repository.
func NewPasswordResetTokenRepository(db *gorm.DB) PasswordResetTokenRepository {
	return &passwordResetTokenRepository{db: db}
}

func (r *passwordResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *passwordResetTokenRepository) Consume(ctx context.Context, token string, newPasswordHash string, now time.Time) (uint, error) {
	var userID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		if err := tx.Where("token = ? AND expires_at > ?", token, now).First(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("password_hash", newPasswordHash).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.PasswordResetToken{}, record.ID).Error; err != nil {
			return err
		}

		userID = record.UserID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}
