package models

import "time"

// Evaluation is an anonymous, immutable satisfaction rating submitted by a
// student. The authoring user reference is kept for authorization and
// attribution only; responses expose the author's anonymous ID instead.
type Evaluation struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	UserID        uint                 `gorm:"not null;index" json:"-"`
	User          User                 `gorm:"foreignKey:UserID" json:"-"`
	InstitutionID uint                 `gorm:"not null;index" json:"institution_id"`
	CourseID      uint                 `gorm:"not null;index" json:"course_id"`
	OverallRating int                  `gorm:"not null" json:"overall_rating"`
	Category      string               `gorm:"size:255" json:"category"`
	Comments      string               `gorm:"type:text" json:"comments"`
	Questions     []EvaluationQuestion `gorm:"foreignKey:EvaluationID" json:"questions"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// EvaluationQuestion is a single per-question rating owned by an evaluation.
type EvaluationQuestion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EvaluationID uint      `gorm:"not null;index" json:"evaluation_id"`
	Question     string    `gorm:"size:512;not null" json:"question"`
	Rating       int       `gorm:"not null" json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
