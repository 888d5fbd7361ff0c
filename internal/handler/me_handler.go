package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/push"
	"crewcall/internal/routing"
	"crewcall/internal/session"
)

// MeHandler serves the authenticated user's own profile, routing decision
// and push registrations.
type MeHandler struct {
	sessions *session.Manager
	router   *routing.Router
	pusher   *push.Service
}

// NewMeHandler creates a new me handler.
func NewMeHandler(sessions *session.Manager, router *routing.Router, pusher *push.Service) *MeHandler {
	return &MeHandler{sessions: sessions, router: router, pusher: pusher}
}

// UpdateMeRequest carries the editable profile fields. Role is not editable.
type UpdateMeRequest struct {
	Name           string `json:"name" validate:"required"`
	Specialization string `json:"specialization,omitempty"`
}

// PushTokenRequest registers a device push token.
type PushTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=ios android"`
}

// RouteResponse is the role router's decision.
type RouteResponse struct {
	Destination string `json:"destination,omitempty"`
	Navigate    bool   `json:"navigate"`
}

// GetMe godoc
// @Summary Get own profile
// @Tags me
// @Produce json
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *MeHandler) GetMe(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	user, err := h.sessions.FetchUserDetails(c.Request().Context(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// GetRoute godoc
// @Summary Resolve the post-login home surface for the caller's role
// @Tags me
// @Produce json
// @Success 200 {object} RouteResponse
// @Security BearerAuth
// @Router /me/route [get]
func (h *MeHandler) GetRoute(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	uid, err := currentUID(c)
	if err != nil {
		return err
	}

	user, err := h.sessions.FetchUserDetails(c.Request().Context(), uid)
	if err != nil {
		if err == errors.ErrProfileNotFound {
			// No profile yet: stay on the current screen.
			return c.JSON(http.StatusOK, RouteResponse{Navigate: false})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	dest, navigate := h.router.Resolve(claims.SessionID, user)
	return c.JSON(http.StatusOK, RouteResponse{
		Destination: string(dest),
		Navigate:    navigate,
	})
}

// UpdateMe godoc
// @Summary Update own profile
// @Tags me
// @Accept json
// @Produce json
// @Param request body UpdateMeRequest true "Profile fields"
// @Success 200 {object} model.User
// @Security BearerAuth
// @Router /me [put]
func (h *MeHandler) UpdateMe(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	var req UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.sessions.UpdateProfile(c.Request().Context(), uid, req.Name, req.Specialization)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// RegisterPushToken godoc
// @Summary Register a device push token
// @Tags me
// @Accept json
// @Produce json
// @Param request body PushTokenRequest true "Device token"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /me/push-token [post]
func (h *MeHandler) RegisterPushToken(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	var req PushTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.pusher.Register(c.Request().Context(), uid, req.Token, req.Platform); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to register push token",
			Code:  "PUSH_TOKEN_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "push token registered"})
}

// UnregisterPushToken godoc
// @Summary Remove a device push token
// @Tags me
// @Accept json
// @Produce json
// @Param request body PushTokenRequest true "Device token"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /me/push-token [delete]
func (h *MeHandler) UnregisterPushToken(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	var req PushTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.pusher.Unregister(c.Request().Context(), uid, req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to remove push token",
			Code:  "PUSH_TOKEN_FAILED",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "push token removed"})
}
