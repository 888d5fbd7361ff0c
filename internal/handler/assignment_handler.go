package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/model"
	"crewcall/internal/service"
)

// AssignmentHandler handles crew-assignment endpoints.
type AssignmentHandler struct {
	assignments service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(assignments service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// AssignRequest offers a requirement slot to an operator.
type AssignRequest struct {
	ProductionID  string `json:"production_id" validate:"required,uuid"`
	RequirementID string `json:"requirement_id" validate:"required,uuid"`
	OperatorUID   string `json:"operator_uid" validate:"required,uuid"`
}

// AssignmentStatusRequest accepts or declines an offer.
type AssignmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// Assign godoc
// @Summary Assign an operator to a requirement
// @Tags assignments
// @Accept json
// @Produce json
// @Param request body AssignRequest true "Assignment data"
// @Success 201 {object} model.Assignment
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	if claims.Role != model.RoleBookingOfficer {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "only booking officers can assign operators",
			Code:  "ROLE_FORBIDDEN",
		})
	}
	uid, err := currentUID(c)
	if err != nil {
		return err
	}

	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	productionID, _ := uuid.Parse(req.ProductionID)
	requirementID, _ := uuid.Parse(req.RequirementID)
	operatorUID, _ := uuid.Parse(req.OperatorUID)

	a, err := h.assignments.Assign(c.Request().Context(), productionID, requirementID, operatorUID, uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, a)
}

// ListByProduction godoc
// @Summary List a production's assignments with operator profiles
// @Tags assignments
// @Produce json
// @Param id path string true "Production ID"
// @Success 200 {array} service.AssignmentDetail
// @Security BearerAuth
// @Router /productions/{id}/assignments [get]
func (h *AssignmentHandler) ListByProduction(c echo.Context) error {
	productionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	details, err := h.assignments.ListDetailsByProduction(c.Request().Context(), productionID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, details)
}

// ListMine godoc
// @Summary List the caller's own assignments
// @Tags assignments
// @Produce json
// @Success 200 {array} model.Assignment
// @Security BearerAuth
// @Router /me/assignments [get]
func (h *AssignmentHandler) ListMine(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	list, err := h.assignments.ListByOperator(c.Request().Context(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, list)
}

// SetStatus godoc
// @Summary Accept or decline an assignment offer
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param request body AssignmentStatusRequest true "New status"
// @Success 200 {object} model.Assignment
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /assignments/{id}/status [patch]
func (h *AssignmentHandler) SetStatus(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignment id")
	}
	var req AssignmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.assignments.SetStatus(c.Request().Context(), id, req.Status, uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, a)
}
