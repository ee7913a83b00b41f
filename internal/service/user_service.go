package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/repository"
)

// ErrUserNotFound indicates the requested account does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken indicates the email is already registered to another account.
var ErrEmailTaken = errors.New("email already registered")

// UserService exposes the admin account-directory use cases.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	hasher    PasswordHasher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds the account directory service.
func NewUserService(repo repository.UserRepository, hasher PasswordHasher, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		hasher:    hasher,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, payload.Email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleStudent
	if payload.Role != "" {
		role = models.Role(payload.Role)
	}

	status := models.UserStatusActive
	if payload.Status != "" {
		status = models.UserStatus(payload.Status)
	}

	anonymousID, err := models.NewAnonymousID("USR")
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		AnonymousID:  anonymousID,
		Email:        payload.Email,
		PasswordHash: hashed,
		Role:         role,
		Institution:  payload.Institution,
		Course:       payload.Course,
		Semester:     payload.Semester,
		Status:       status,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("anonymous_id", user.AnonymousID).Str("role", string(user.Role)).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.Email != nil && *payload.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, *payload.Email); err == nil {
			return dto.UserResponse{}, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, err
		}
		user.Email = *payload.Email
	}

	if payload.Role != nil {
		user.Role = models.Role(*payload.Role)
	}
	if payload.Institution != nil {
		user.Institution = *payload.Institution
	}
	if payload.Course != nil {
		user.Course = *payload.Course
	}
	if payload.Semester != nil {
		user.Semester = payload.Semester
	}
	if payload.Status != nil {
		user.Status = models.UserStatus(*payload.Status)
	}

	if payload.Password != nil {
		hashed, err := s.hasher.Hash(*payload.Password)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashed
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user updated")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}
