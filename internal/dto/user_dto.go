package dto

import (
	"time"

	"github.com/avaliaedu/avalia-api/internal/models"
)

// UserResponse is the client-facing account representation. The password
// credential is never part of any response.
type UserResponse struct {
	ID             uint      `json:"id"`
	AnonymousID    string    `json:"anonymous_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Institution    string    `json:"institution,omitempty"`
	Course         string    `json:"course,omitempty"`
	Semester       *int      `json:"semester,omitempty"`
	Status         string    `json:"status"`
	LastActivityAt time.Time `json:"last_activity_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUserResponse maps a user model to its response representation.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		AnonymousID:    user.AnonymousID,
		Email:          user.Email,
		Role:           string(user.Role),
		Institution:    user.Institution,
		Course:         user.Course,
		Semester:       user.Semester,
		Status:         string(user.Status),
		LastActivityAt: user.LastActivityAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// NewUserResponseSlice maps a slice of user models.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// UserCreateRequest is the admin payload for creating an account directly.
type UserCreateRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"omitempty,oneof=student admin"`
	Institution string `json:"institution"`
	Course      string `json:"course"`
	Semester    *int   `json:"semester" validate:"omitempty,min=1"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive locked"`
}

// UserUpdateRequest carries partial account updates. Nil fields are left
// untouched; a provided password is rehashed before storage.
type UserUpdateRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=6"`
	Role        *string `json:"role" validate:"omitempty,oneof=student admin"`
	Institution *string `json:"institution"`
	Course      *string `json:"course"`
	Semester    *int    `json:"semester" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive locked"`
}
