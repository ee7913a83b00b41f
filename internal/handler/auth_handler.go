package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// AuthHandler wires the public authentication routes.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches authentication endpoints to the router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/forgot-password", h.forgotPassword)
	router.Post("/reset-password", h.resetPassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Register(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return utils.Error(c, fiber.StatusConflict, "user with this email already exists")
		case isValidationError(err):
			return utils.Error(c, fiber.StatusBadRequest, "email and password are required")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusCreated, "user registered successfully", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Login(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
		case isValidationError(err):
			return utils.Error(c, fiber.StatusBadRequest, "email and password are required")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, "logged in successfully", response)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email is required")
	}

	if err := h.service.ForgotPassword(c.Context(), payload.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "password reset token sent", nil)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var payload dto.ResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Token == "" || payload.NewPassword == "" {
		return utils.Error(c, fiber.StatusBadRequest, "token and new password are required")
	}

	if err := h.service.ResetPassword(c.Context(), payload.Token, payload.NewPassword); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid or expired token")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "password reset successfully", nil)
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
