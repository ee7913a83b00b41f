package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/avaliaedu/avalia-api/internal/models"
)

func newRBACTestApp(localRole interface{}, allowed ...models.Role) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if localRole != nil {
			c.Locals("user_role", localRole)
		}
		return c.Next()
	})
	app.Use(RequireRole(allowed...))
	app.Get("/restricted", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsAuthorizedRole(t *testing.T) {
	app := newRBACTestApp("admin", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleAllowsAnyListedRole(t *testing.T) {
	app := newRBACTestApp("student", models.RoleAdmin, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	app := newRBACTestApp("student", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	app := newRBACTestApp(nil, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleNormalizesCase(t *testing.T) {
	app := newRBACTestApp("  Admin ", models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/restricted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
