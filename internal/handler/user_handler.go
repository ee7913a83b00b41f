package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// UserHandler wires the admin account-directory routes.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches user endpoints to the router group.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "users retrieved", users)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "user retrieved", user)
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Create(c.Context(), payload)
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

	return utils.Success(c, fiber.StatusCreated, "user created successfully", user)
}

func (h *UserHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrEmailTaken):
			return utils.Error(c, fiber.StatusConflict, "user with this email already exists")
		case isValidationError(err):
			return utils.Error(c, fiber.StatusBadRequest, "invalid user fields")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, "user updated successfully", user)
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "user deleted successfully", fiber.Map{"id": id})
}

func (h *UserHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
