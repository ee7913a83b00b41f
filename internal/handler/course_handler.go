package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// CourseHandler wires the course reference-data routes.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "course not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.Error(c, fiber.StatusBadRequest, "course name is required")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, "course created successfully", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.Error(c, fiber.StatusNotFound, "course not found")
		case isValidationError(err):
			return utils.Error(c, fiber.StatusBadRequest, "course name is required")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, "course updated successfully", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "course not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "course deleted successfully", fiber.Map{"id": id})
}

func (h *CourseHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
