package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// TokenVerifier checks bearer tokens and returns the identity they prove.
type TokenVerifier interface {
	Verify(token string) (service.TokenClaims, error)
}

// JWTProtected returns a middleware that validates bearer tokens and attaches
// the proven identity to the request. Every failure halts the pipeline with
// 401 before the route handler runs; the typed failure distinction stays in
// the server log only.
func JWTProtected(verifier TokenVerifier, logger zerolog.Logger) fiber.Handler {
	authLogger := logger.With().Str("component", "auth_gate").Logger()

	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.Error(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.Error(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			authLogger.Warn().
				Str("reason", tokenFailureReason(err)).
				Str("correlation_id", GetCorrelationID(c)).
				Msg("token rejected")
			return utils.Error(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", string(claims.Role))

		return c.Next()
	}
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, service.ErrTokenSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}
