package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// RequireRole ensures the authenticated user holds one of the allowed roles.
// It must run after JWTProtected; identity is established before it is
// compared.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if role.Valid() {
			allowed[role] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := models.Role(normalizeRoleValue(c.Locals("user_role")))
		if _, ok := allowed[role]; !ok {
			return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
