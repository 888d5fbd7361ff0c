package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/service"
)

// ProductionHandler handles production endpoints.
type ProductionHandler struct {
	productions service.ProductionService
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(productions service.ProductionService) *ProductionHandler {
	return &ProductionHandler{productions: productions}
}

// ProductionRequest carries the production form.
type ProductionRequest struct {
	Name            string    `json:"name" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	CallTime        time.Time `json:"call_time"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time"`
	Venue           string    `json:"venue"`
	LocationDetails string    `json:"location_details"`
	Notes           string    `json:"notes"`
}

// StatusRequest moves a production along its lifecycle.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=requested confirmed in_progress completed cancelled"`
}

func (r ProductionRequest) toInput() service.ProductionInput {
	return service.ProductionInput{
		Name:            r.Name,
		Date:            r.Date,
		CallTime:        r.CallTime,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Venue:           r.Venue,
		LocationDetails: r.LocationDetails,
		Notes:           r.Notes,
	}
}

// Create godoc
// @Summary Request a new production
// @Tags productions
// @Accept json
// @Produce json
// @Param request body ProductionRequest true "Production data"
// @Success 201 {object} model.Production
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions [post]
func (h *ProductionHandler) Create(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	if claims.Role != model.RoleProducer {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "only producers can request productions",
			Code:  "ROLE_FORBIDDEN",
		})
	}
	uid, err := currentUID(c)
	if err != nil {
		return err
	}

	var req ProductionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.productions.Create(c.Request().Context(), req.toInput(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, p)
}

// List godoc
// @Summary List productions
// @Tags productions
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} model.Production
// @Security BearerAuth
// @Router /productions [get]
func (h *ProductionHandler) List(c echo.Context) error {
	var (
		list []model.Production
		err  error
	)
	if status := c.QueryParam("status"); status != "" {
		list, err = h.productions.ListByStatus(c.Request().Context(), status)
	} else {
		list, err = h.productions.List(c.Request().Context())
	}
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get a production
// @Tags productions
// @Produce json
// @Param id path string true "Production ID"
// @Success 200 {object} model.Production
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions/{id} [get]
func (h *ProductionHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	p, err := h.productions.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, p)
}

// Update godoc
// @Summary Update production details
// @Tags productions
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body ProductionRequest true "Production data"
// @Success 200 {object} model.Production
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions/{id} [put]
func (h *ProductionHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	var req ProductionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.productions.UpdateDetails(c.Request().Context(), id, req.toInput())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateStatus godoc
// @Summary Move a production along its status lifecycle
// @Tags productions
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} model.Production
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions/{id}/status [patch]
func (h *ProductionHandler) UpdateStatus(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	if claims.Role != model.RoleBookingOfficer && claims.Role != model.RoleProducer {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "operators cannot change production status",
			Code:  "ROLE_FORBIDDEN",
		})
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.productions.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, p)
}

// Delete godoc
// @Summary Delete a production
// @Tags productions
// @Param id path string true "Production ID"
// @Success 204
// @Security BearerAuth
// @Router /productions/{id} [delete]
func (h *ProductionHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	if err := h.productions.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
