package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ResetTokenDelivery hands a freshly issued reset token to the account owner
// through an out-of-band channel.
type ResetTokenDelivery interface {
	Deliver(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogResetDelivery writes the token to the application log. It stands in for
// an email delivery collaborator until one is wired up.
type LogResetDelivery struct {
	logger zerolog.Logger
}

// NewLogResetDelivery constructs a logging delivery provider.
func NewLogResetDelivery(logger zerolog.Logger) *LogResetDelivery {
	return &LogResetDelivery{logger: logger.With().Str("component", "reset_delivery").Logger()}
}

// Deliver logs the token and returns nil to indicate success.
func (l *LogResetDelivery) Deliver(ctx context.Context, email, token string, expiresAt time.Time) error {
	l.logger.Info().
		Str("email", email).
		Str("token", token).
		Time("expires_at", expiresAt).
		Msg("password reset token issued")
	return nil
}
