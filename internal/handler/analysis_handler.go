package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/avaliaedu/avalia-api/internal/service"
	"github.com/avaliaedu/avalia-api/internal/utils"
)

// AnalysisHandler wires the admin analysis-report route.
type AnalysisHandler struct {
	service service.AnalysisService
	logger  zerolog.Logger
}

// NewAnalysisHandler constructs the handler.
func NewAnalysisHandler(service service.AnalysisService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// Register attaches the analysis endpoint to the router group.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Get("", h.report)
}

func (h *AnalysisHandler) report(c *fiber.Ctx) error {
	report, err := h.service.Report(
		c.Context(),
		c.Query("institutionId"),
		c.Query("courseId"),
		c.Query("period"),
	)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate analysis report")
		return utils.Error(c, fiber.StatusInternalServerError, "failed to generate analysis report")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(report)
}
