package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/service"
)

// MessageHandler handles per-production chat endpoints.
type MessageHandler struct {
	messages service.MessageService
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// MessageRequest posts a chat message.
type MessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// Post godoc
// @Summary Post a message to a production's chat
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Production ID"
// @Param request body MessageRequest true "Message"
// @Success 201 {object} model.Message
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /productions/{id}/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	productionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.messages.Post(c.Request().Context(), productionID, uid, req.Body)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, m)
}

// List godoc
// @Summary List a production's chat messages
// @Tags messages
// @Produce json
// @Param id path string true "Production ID"
// @Success 200 {array} model.Message
// @Security BearerAuth
// @Router /productions/{id}/messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	productionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid production id")
	}
	list, err := h.messages.ListByProduction(c.Request().Context(), productionID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, list)
}
