package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// InstitutionHandler wires the institution reference-data routes.
type InstitutionHandler struct {
	service service.InstitutionService
	logger  zerolog.Logger
}

// NewInstitutionHandler constructs the handler.
func NewInstitutionHandler(service service.InstitutionService, logger zerolog.Logger) *InstitutionHandler {
	return &InstitutionHandler{
		service: service,
		logger:  logger.With().Str("component", "institution_handler").Logger(),
	}
}

// Register attaches institution endpoints to the router group.
func (h *InstitutionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *InstitutionHandler) list(c *fiber.Ctx) error {
	institutions, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "institutions retrieved", institutions)
}

func (h *InstitutionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	institution, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "institution not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "institution retrieved", institution)
}

func (h *InstitutionHandler) create(c *fiber.Ctx) error {
	var payload dto.InstitutionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	institution, err := h.service.Create(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.Error(c, fiber.StatusBadRequest, "institution name is required")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, "institution created successfully", institution)
}

func (h *InstitutionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.InstitutionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	institution, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInstitutionNotFound):
			return utils.Error(c, fiber.StatusNotFound, "institution not found")
		case isValidationError(err):
			return utils.Error(c, fiber.StatusBadRequest, "institution name is required")
		default:
			return h.internalError(c, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, "institution updated successfully", institution)
}

func (h *InstitutionHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "institution not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "institution deleted successfully", fiber.Map{"id": id})
}

func (h *InstitutionHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
