package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/repository"
)

// ErrInstitutionNotFound indicates the requested institution does not exist.
var ErrInstitutionNotFound = errors.New("institution not found")

// InstitutionService exposes institution reference-data use cases.
type InstitutionService interface {
	List(ctx context.Context) ([]dto.InstitutionResponse, error)
	Get(ctx context.Context, id uint) (dto.InstitutionResponse, error)
	Create(ctx context.Context, payload dto.InstitutionRequest) (dto.InstitutionResponse, error)
	Update(ctx context.Context, id uint, payload dto.InstitutionRequest) (dto.InstitutionResponse, error)
	Delete(ctx context.Context, id uint) error
}

type institutionService struct {
	repo      repository.InstitutionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewInstitutionService builds the institution service.
func NewInstitutionService(repo repository.InstitutionRepository, validate *validator.Validate, logger zerolog.Logger) InstitutionService {
	return &institutionService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "institution_service").Logger(),
	}
}

func (s *institutionService) List(ctx context.Context) ([]dto.InstitutionResponse, error) {
	institutions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewInstitutionResponseSlice(institutions), nil
}

func (s *institutionService) Get(ctx context.Context, id uint) (dto.InstitutionResponse, error) {
	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InstitutionResponse{}, ErrInstitutionNotFound
		}
		return dto.InstitutionResponse{}, err
	}

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) Create(ctx context.Context, payload dto.InstitutionRequest) (dto.InstitutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstitutionResponse{}, err
	}

	institution := models.Institution{Name: payload.Name}
	if err := s.repo.Create(ctx, &institution); err != nil {
		return dto.InstitutionResponse{}, err
	}

	s.logger.Info().Uint("institution_id", institution.ID).Msg("institution created")

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) Update(ctx context.Context, id uint, payload dto.InstitutionRequest) (dto.InstitutionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstitutionResponse{}, err
	}

	institution, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InstitutionResponse{}, ErrInstitutionNotFound
		}
		return dto.InstitutionResponse{}, err
	}

	institution.Name = payload.Name
	if err := s.repo.Update(ctx, &institution); err != nil {
		return dto.InstitutionResponse{}, err
	}

	s.logger.Info().Uint("institution_id", institution.ID).Msg("institution updated")

	return dto.NewInstitutionResponse(institution), nil
}

func (s *institutionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInstitutionNotFound
		}
		return err
	}

	s.logger.Info().Uint("institution_id", id).Msg("institution deleted")
	return nil
}
