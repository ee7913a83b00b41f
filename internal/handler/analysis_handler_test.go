package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avaliaedu/avalia-api/internal/handler"
	"github.com/avaliaedu/avalia-api/pkg/analysis"
)

type mockAnalysisService struct {
	lastInstitution string
	lastCourse      string
	lastPeriod      string
	report          json.RawMessage
	err             error
}

func (m *mockAnalysisService) Report(_ context.Context, institutionID, courseID, period string) (json.RawMessage, error) {
	m.lastInstitution = institutionID
	m.lastCourse = courseID
	m.lastPeriod = period
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func newAnalysisTestApp(svc *mockAnalysisService) *fiber.App {
	app := fiber.New()
	handler.NewAnalysisHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/analysis"))
	return app
}

func TestAnalysisHandlerReport(t *testing.T) {
	svc := &mockAnalysisService{report: json.RawMessage(`{"total_evaluations":3,"average_rating":4.2}`)}
	app := newAnalysisTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis?institutionId=1&courseId=2&period=2026-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/json")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"total_evaluations":3,"average_rating":4.2}`, string(body))

	require.Equal(t, "1", svc.lastInstitution)
	require.Equal(t, "2", svc.lastCourse)
	require.Equal(t, "2026-1", svc.lastPeriod)
}

func TestAnalysisHandlerReportFailure(t *testing.T) {
	svc := &mockAnalysisService{err: analysis.ErrScriptFailed}
	app := newAnalysisTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "failed to generate analysis report", body.Message)
}
