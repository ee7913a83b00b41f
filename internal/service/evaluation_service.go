package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/observability"
	"github.com/avaliaedu/avalia-api/internal/repository"
)

// ErrEvaluationNotFound indicates the requested evaluation does not exist.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// EvaluationService exposes evaluation submission use cases. Evaluations are
// immutable after creation; there is no update operation.
type EvaluationService interface {
	Create(ctx context.Context, userID uint, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error)
	Get(ctx context.Context, id uint) (dto.EvaluationResponse, error)
	List(ctx context.Context) ([]dto.EvaluationResponse, error)
	Delete(ctx context.Context, id uint) error
}

type evaluationCreatedEvent struct {
	EvaluationID  uint      `json:"evaluation_id"`
	InstitutionID uint      `json:"institution_id"`
	CourseID      uint      `json:"course_id"`
	OverallRating int       `json:"overall_rating"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type evaluationService struct {
	repo      repository.EvaluationRepository
	nats      *nats.Conn
	subject   string
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewEvaluationService builds the evaluation service. The NATS connection is
// optional; without one the created events are simply not published.
func NewEvaluationService(repo repository.EvaluationRepository, natsConn *nats.Conn, subject string, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		repo:      repo,
		nats:      natsConn,
		subject:   subject,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/avaliaedu/avalia-api/internal/service/evaluation"),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
	}
}

func (s *evaluationService) Create(ctx context.Context, userID uint, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "evaluations.create", trace.WithAttributes(
		attribute.Int64("evaluation.institution_id", int64(payload.InstitutionID)),
		attribute.Int64("evaluation.course_id", int64(payload.CourseID)),
	))
	defer span.End()

	questions := make([]models.EvaluationQuestion, 0, len(payload.Questions))
	for _, question := range payload.Questions {
		questions = append(questions, models.EvaluationQuestion{
			Question: strings.TrimSpace(s.sanitizer.Sanitize(question.Question)),
			Rating:   question.Rating,
		})
	}

	evaluation := models.Evaluation{
		UserID:        userID,
		InstitutionID: payload.InstitutionID,
		CourseID:      payload.CourseID,
		OverallRating: payload.OverallRating,
		Category:      strings.TrimSpace(s.sanitizer.Sanitize(payload.Category)),
		Comments:      strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments)),
		Questions:     questions,
	}

	if err := s.repo.Create(spanCtx, &evaluation); err != nil {
		span.RecordError(err)
		return dto.EvaluationResponse{}, err
	}

	observability.EvaluationsSubmitted().Inc()
	s.logger.Info().Uint("evaluation_id", evaluation.ID).Int("questions", len(questions)).Msg("evaluation created")

	s.publishCreated(evaluation)

	// Reload with author attribution so the response carries the anonymous id.
	stored, err := s.repo.GetByID(spanCtx, evaluation.ID)
	if err != nil {
		return dto.NewEvaluationResponse(evaluation), nil
	}

	return dto.NewEvaluationResponse(stored), nil
}

func (s *evaluationService) Get(ctx context.Context, id uint) (dto.EvaluationResponse, error) {
	evaluation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) List(ctx context.Context) ([]dto.EvaluationResponse, error) {
	evaluations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewEvaluationResponseSlice(evaluations), nil
}

func (s *evaluationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEvaluationNotFound
		}
		return err
	}

	s.logger.Info().Uint("evaluation_id", id).Msg("evaluation deleted")
	return nil
}

// publishCreated emits a best-effort event for downstream analytics. Failures
// are logged and never surfaced to the submitting client.
func (s *evaluationService) publishCreated(evaluation models.Evaluation) {
	if s.nats == nil || s.subject == "" {
		return
	}

	event := evaluationCreatedEvent{
		EvaluationID:  evaluation.ID,
		InstitutionID: evaluation.InstitutionID,
		CourseID:      evaluation.CourseID,
		OverallRating: evaluation.OverallRating,
		SubmittedAt:   evaluation.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode evaluation event")
		return
	}

	if err := s.nats.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish evaluation event")
	}
}
