package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/repository"
)

// captureDelivery records issued reset tokens instead of sending them.
type captureDelivery struct {
	mu     sync.Mutex
	tokens []string
	emails []string
}

func (d *captureDelivery) Deliver(_ context.Context, email, token string, _ time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = append(d.tokens, token)
	d.emails = append(d.emails, email)
	return nil
}

func (d *captureDelivery) lastToken() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tokens) == 0 {
		return ""
	}
	return d.tokens[len(d.tokens)-1]
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PasswordResetToken{}))
	return db
}

func newTestAuthService(t *testing.T, db *gorm.DB, delivery ResetTokenDelivery) AuthService {
	t.Helper()

	if delivery == nil {
		delivery = &captureDelivery{}
	}

	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewPasswordResetTokenRepository(db),
		NewBcryptHasher(bcrypt.MinCost),
		NewTokenService("test-secret", time.Hour),
		delivery,
		validator.New(validator.WithRequiredStructEnabled()),
		time.Hour,
		zerolog.Nop(),
	)
}

func TestAuthServiceRegister(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	response, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:       "ana@example.com",
		Password:    "secret123",
		Institution: "UFRJ",
		Course:      "Computer Science",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "ana@example.com", response.User.Email)
	require.Equal(t, string(models.RoleStudent), response.User.Role)
	require.Regexp(t, `^USR-[A-Z0-9]{8}$`, response.User.AnonymousID)

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "ana@example.com").Error)
	require.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	payload := dto.RegisterRequest{Email: "dup@example.com", Password: "secret123"}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

// racingUserRepo simulates a concurrent registration landing between the
// email check and the insert: the check sees no row, the insert hits the
// unique index.
type racingUserRepo struct {
	repository.UserRepository
}

func (racingUserRepo) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, gorm.ErrRecordNotFound
}

func (racingUserRepo) Create(context.Context, *models.User) error {
	return gorm.ErrDuplicatedKey
}

func TestAuthServiceRegisterDuplicateEmailRace(t *testing.T) {
	db := setupAuthTestDB(t)

	svc := NewAuthService(
		racingUserRepo{},
		repository.NewPasswordResetTokenRepository(db),
		NewBcryptHasher(bcrypt.MinCost),
		NewTokenService("test-secret", time.Hour),
		&captureDelivery{},
		validator.New(validator.WithRequiredStructEnabled()),
		time.Hour,
		zerolog.Nop(),
	)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "race@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "not-an-email", Password: "secret123"})
	require.Error(t, err)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{Email: "ok@example.com", Password: "short"})
	require.Error(t, err)
}

func TestAuthServiceLogin(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "bia@example.com", Password: "secret123"})
	require.NoError(t, err)

	response, err := svc.Login(context.Background(), dto.LoginRequest{Email: "bia@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "bia@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceForgotPasswordUnknownEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthServicePasswordResetFlow(t *testing.T) {
	db := setupAuthTestDB(t)
	delivery := &captureDelivery{}
	svc := newTestAuthService(t, db, delivery)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Email: "carla@example.com", Password: "oldpassword"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), "carla@example.com"))
	token := delivery.lastToken()
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "newpassword"))

	// Old password no longer works, new one does.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "carla@example.com", Password: "oldpassword"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "carla@example.com", Password: "newpassword"})
	require.NoError(t, err)

	// The token is single use.
	err = svc.ResetPassword(context.Background(), token, "anotherpassword")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestAuthServiceResetPasswordUnknownToken(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newTestAuthService(t, db, nil)

	err := svc.ResetPassword(context.Background(), "never-issued", "newpassword")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}
