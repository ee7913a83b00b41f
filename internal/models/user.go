package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Role classifies which routes an authenticated account may invoke.
type Role string

// Known account roles.
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the closed set of known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserStatus describes the lifecycle state of an account.
type UserStatus string

// Known account statuses.
const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusLocked   UserStatus = "locked"
)

// Valid reports whether the status is one of the known account states.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusLocked:
		return true
	default:
		return false
	}
}

// User represents a person that can authenticate against the platform.
// The numeric ID stays internal; clients only ever see the anonymous ID.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AnonymousID    string     `gorm:"size:32;uniqueIndex;not null" json:"anonymous_id"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"size:255;not null" json:"-"`
	Role           Role       `gorm:"size:16;not null;default:student" json:"role"`
	Institution    string     `gorm:"size:255" json:"institution"`
	Course         string     `gorm:"size:255" json:"course"`
	Semester       *int       `json:"semester"`
	Status         UserStatus `gorm:"size:16;not null;default:active" json:"status"`
	LastActivityAt time.Time  `json:"last_activity_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const anonymousIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewAnonymousID produces a public identifier of the form PREFIX-XXXXXXXX.
func NewAnonymousID(prefix string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate anonymous id: %w", err)
	}

	for i, b := range buf {
		buf[i] = anonymousIDAlphabet[int(b)%len(anonymousIDAlphabet)]
	}

	return fmt.Sprintf("%s-%s", prefix, string(buf)), nil
}
