package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/middleware"
	"github.com/avaliaedu/avalia-api/internal/models"
	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// EvaluationHandler wires the evaluation routes. Submission is student-only;
// listing and deletion are admin-only; reads by id are open to both roles.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation endpoints with their per-route role gates.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", middleware.RequireRole(models.RoleStudent), h.create)
	router.Get("", middleware.RequireRole(models.RoleAdmin), h.list)
	router.Get("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleStudent), h.get)
	router.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.delete)
}

func (h *EvaluationHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.Error(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.EvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.service.Create(c.Context(), userID, payload)
	if err != nil {
		if isValidationError(err) {
			return utils.Error(c, fiber.StatusBadRequest, "missing required evaluation fields")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusCreated, "evaluation created successfully", evaluation)
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	evaluations, err := h.service.List(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEvaluationNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "evaluation not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrEvaluationNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "evaluation not found")
		}
		return h.internalError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, "evaluation deleted successfully", fiber.Map{"id": id})
}

func (h *EvaluationHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
