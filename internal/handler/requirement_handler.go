package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/service"
)

// RequirementHandler handles crew-requirement endpoints.
type RequirementHandler struct {
	requirements service.RequirementService
}

// NewRequirementHandler creates a new requirement handler.
func NewRequirementHandler(requirements service.RequirementService) *RequirementHandler {
	return &RequirementHandler{requirements: requirements}
}

// RequirementRequest carries the crew-requirement form.
type RequirementRequest struct {
	Role           string `json:"role" validate:"required"`
	Specialization string `json:"specialization,omitempty"`
	Count          int    `json:"count" validate:"omitempty,min=1"`
	Notes          string `json:"notes"`
}

func (r RequirementRequest) toInput() service.RequirementInput {
	return service.RequirementInput{
		Role:           r.Role,
		Specialization: r.Specialization,
		Count:          r.Count,
		Notes:          r.Notes,
	}
}

// Create godoc
// @Summary Add a crew requirement to a production
// @Tags requirements
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body RequirementRequest true "Requirement data"
// @Success 201 {object} model.Requirement
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions/{id}/requirements [post]
func (h *RequirementHandler) Create(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	productionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	var req RequirementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requirement, err := h.requirements.Create(c.Request().Context(), productionID, req.toInput(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, requirement)
}

// List godoc
// @Summary List a production's crew requirements
// @Tags requirements
// @Produce json
// @Param id path string true "Production ID"
// @Success 200 {array} model.Requirement
// @Security BearerAuth
// @Router /productions/{id}/requirements [get]
func (h *RequirementHandler) List(c echo.Context) error {
	productionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	list, err := h.requirements.ListByProduction(c.Request().Context(), productionID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, list)
}

// Update godoc
// @Summary Update a crew requirement
// @Tags requirements
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param request body RequirementRequest true "Requirement data"
// @Success 200 {object} model.Requirement
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /requirements/{id} [put]
func (h *RequirementHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid requirement id")
	}
	var req RequirementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requirement, err := h.requirements.Update(c.Request().Context(), id, req.toInput())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, requirement)
}

// Delete godoc
// @Summary Delete a crew requirement
// @Tags requirements
// @Param id path string true "Requirement ID"
// @Success 204
// @Security BearerAuth
// @Router /requirements/{id} [delete]
func (h *RequirementHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid requirement id")
	}
	if err := h.requirements.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
