package dto

import (
	"time"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// EvaluationQuestionInput is a single per-question rating in a submission.
type EvaluationQuestionInput struct {
	Question string `json:"question" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

// EvaluationCreateRequest is the student submission payload. The evaluation
// row and its question rows are inserted atomically.
type EvaluationCreateRequest struct {
	InstitutionID uint                      `json:"institution_id" validate:"required"`
	CourseID      uint                      `json:"course_id" validate:"required"`
	OverallRating int                       `json:"overall_rating" validate:"required,min=1,max=5"`
	Category      string                    `json:"category"`
	Comments      string                    `json:"comments"`
	Questions     []EvaluationQuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// EvaluationQuestionResponse mirrors a stored per-question rating.
type EvaluationQuestionResponse struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
	Rating   int    `json:"rating"`
}

// EvaluationResponse is the client-facing evaluation representation. The
// author is attributed only through the anonymous identifier.
type EvaluationResponse struct {
	ID            uint                         `json:"id"`
	AnonymousID   string                       `json:"anonymous_id"`
	InstitutionID uint                         `json:"institution_id"`
	CourseID      uint                         `json:"course_id"`
	OverallRating int                          `json:"overall_rating"`
	Category      string                       `json:"category,omitempty"`
	Comments      string                       `json:"comments,omitempty"`
	Questions     []EvaluationQuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// NewEvaluationResponse maps an evaluation model with its questions.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	questions := make([]EvaluationQuestionResponse, 0, len(evaluation.Questions))
	for _, question := range evaluation.Questions {
		questions = append(questions, EvaluationQuestionResponse{
			ID:       question.ID,
			Question: question.Question,
			Rating:   question.Rating,
		})
	}

	return EvaluationResponse{
		ID:            evaluation.ID,
		AnonymousID:   evaluation.User.AnonymousID,
		InstitutionID: evaluation.InstitutionID,
		CourseID:      evaluation.CourseID,
		OverallRating: evaluation.OverallRating,
		Category:      evaluation.Category,
		Comments:      evaluation.Comments,
		Questions:     questions,
		CreatedAt:     evaluation.CreatedAt,
	}
}

// NewEvaluationResponseSlice maps a slice of evaluation models.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}
	return responses
}
