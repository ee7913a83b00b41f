package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/observability"
	"github.com/avaliaedu/avalia-api/internal/repository"
)

// Sentinel failures of the authentication flows.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrResetTokenInvalid covers unknown and expired reset tokens uniformly.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// AuthService exposes registration, login and the password recovery flow.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users     repository.UserRepository
	resets    repository.PasswordResetTokenRepository
	hasher    PasswordHasher
	tokens    TokenService
	delivery  ResetTokenDelivery
	validator *validator.Validate
	resetTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the authentication service.
func NewAuthService(
	users repository.UserRepository,
	resets repository.PasswordResetTokenRepository,
	hasher PasswordHasher,
	tokens TokenService,
	delivery ResetTokenDelivery,
	validate *validator.Validate,
	resetTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}

	return &authService{
		users:     users,
		resets:    resets,
		hasher:    hasher,
		tokens:    tokens,
		delivery:  delivery,
		validator: validate,
		resetTTL:  resetTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, payload.Email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleStudent
	if payload.Role != "" {
		role = models.Role(payload.Role)
	}

	anonymousID, err := models.NewAnonymousID("USR")
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		AnonymousID:    anonymousID,
		Email:          payload.Email,
		PasswordHash:   hashed,
		Role:           role,
		Institution:    payload.Institution,
		Course:         payload.Course,
		Semester:       payload.Semester,
		Status:         models.UserStatusActive,
		LastActivityAt: s.now(),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		// The unique index closes the gap between the email check above and
		// the insert when two registrations race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AuthResponse{}, ErrEmailTaken
		}
		return dto.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Str("anonymous_id", user.AnonymousID).Msg("user registered")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if !s.hasher.Verify(payload.Password, user.PasswordHash) {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user.LastActivityAt = s.now()
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login activity")
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// ForgotPassword issues a fresh reset token for the account behind the email.
// Earlier outstanding tokens are left untouched.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	expiresAt := s.now().Add(s.resetTTL)
	record := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	if err := s.resets.Create(ctx, &record); err != nil {
		return err
	}

	observability.ResetTokensIssued().Inc()

	if err := s.delivery.Deliver(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Error().Err(err).Msg("failed to deliver reset token")
		return err
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.resets.Consume(ctx, token, hashed, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	s.logger.Info().Uint("user_id", userID).Msg("password reset completed")
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
