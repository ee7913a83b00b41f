package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avaliaedu/avalia-api/internal/dto"
	"github.com/avaliaedu/avalia-api/internal/handler"
	"github.com/avaliaedu/avalia-api/internal/service"
)

type mockInstitutionService struct {
	listResponse []dto.InstitutionResponse
	getResponse  dto.InstitutionResponse
	getErr       error
	createErr    error
	updateErr    error
	deleteErr    error
}

func (m *mockInstitutionService) List(_ context.Context) ([]dto.InstitutionResponse, error) {
	return m.listResponse, nil
}

func (m *mockInstitutionService) Get(_ context.Context, _ uint) (dto.InstitutionResponse, error) {
	return m.getResponse, m.getErr
}

func (m *mockInstitutionService) Create(_ context.Context, payload dto.InstitutionRequest) (dto.InstitutionResponse, error) {
	if m.createErr != nil {
		return dto.InstitutionResponse{}, m.createErr
	}
	return dto.InstitutionResponse{ID: 1, Name: payload.Name}, nil
}

func (m *mockInstitutionService) Update(_ context.Context, id uint, payload dto.InstitutionRequest) (dto.InstitutionResponse, error) {
	if m.updateErr != nil {
		return dto.InstitutionResponse{}, m.updateErr
	}
	return dto.InstitutionResponse{ID: id, Name: payload.Name}, nil
}

func (m *mockInstitutionService) Delete(_ context.Context, _ uint) error {
	return m.deleteErr
}

func newInstitutionTestApp(svc service.InstitutionService) *fiber.App {
	app := fiber.New()
	handler.NewInstitutionHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/institutions"))
	return app
}

func TestInstitutionHandlerList(t *testing.T) {
	svc := &mockInstitutionService{listResponse: []dto.InstitutionResponse{
		{ID: 1, Name: "UFRJ"},
		{ID: 2, Name: "USP"},
	}}
	app := newInstitutionTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/institutions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                      `json:"success"`
		Data    []dto.InstitutionResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data, 2)
}

func TestInstitutionHandlerGetNotFound(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{getErr: service.ErrInstitutionNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/institutions/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInstitutionHandlerGetInvalidID(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/institutions/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInstitutionHandlerCreate(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{})

	resp := postJSON(t, app, "/api/institutions", `{"name":"UNICAMP"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.InstitutionResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "UNICAMP", body.Data.Name)
}

func TestInstitutionHandlerCreateValidationError(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(dto.InstitutionRequest{})
	require.Error(t, err)

	app := newInstitutionTestApp(&mockInstitutionService{createErr: err})

	resp := postJSON(t, app, "/api/institutions", `{}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInstitutionHandlerUpdateNotFound(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{updateErr: service.ErrInstitutionNotFound})

	req := httptest.NewRequest(http.MethodPut, "/api/institutions/42", newJSONBody(`{"name":"Renamed"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInstitutionHandlerDelete(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/institutions/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestInstitutionHandlerDeleteNotFound(t *testing.T) {
	app := newInstitutionTestApp(&mockInstitutionService{deleteErr: service.ErrInstitutionNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/institutions/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
