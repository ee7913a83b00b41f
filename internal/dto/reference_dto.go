package dto

import (
	"time"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// InstitutionRequest creates or renames an institution.
type InstitutionRequest struct {
	Name string `json:"name" validate:"required"`
}

// InstitutionResponse is the client-facing institution representation.
type InstitutionResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInstitutionResponse maps an institution model.
func NewInstitutionResponse(institution models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:        institution.ID,
		Name:      institution.Name,
		CreatedAt: institution.CreatedAt,
		UpdatedAt: institution.UpdatedAt,
	}
}

// NewInstitutionResponseSlice maps a slice of institution models.
func NewInstitutionResponseSlice(institutions []models.Institution) []InstitutionResponse {
	responses := make([]InstitutionResponse, 0, len(institutions))
	for _, institution := range institutions {
		responses = append(responses, NewInstitutionResponse(institution))
	}
	return responses
}

// CourseRequest creates or renames a course.
type CourseRequest struct {
	Name string `json:"name" validate:"required"`
}

// CourseResponse is the client-facing course representation.
type CourseResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCourseResponse maps a course model.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:        course.ID,
		Name:      course.Name,
		CreatedAt: course.CreatedAt,
		UpdatedAt: course.UpdatedAt,
	}
}

// NewCourseResponseSlice maps a slice of course models.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
