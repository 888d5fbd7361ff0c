package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"crewcall/internal/errors"
	"crewcall/internal/notify"
)

// NotificationHandler handles notification endpoints, including the SSE live
// feed.
type NotificationHandler struct {
	center *notify.Center
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(center *notify.Center) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// BulkReadResponse reports the outcome of a bulk mark-as-read.
type BulkReadResponse struct {
	Total  int         `json:"total"`
	Failed []uuid.UUID `json:"failed,omitempty"`
}

// List godoc
// @Summary Get the caller's notification snapshot
// @Tags notifications
// @Produce json
// @Success 200 {object} notify.Snapshot
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	snap, err := h.center.SnapshotFor(c.Request().Context(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, snap)
}

// Stream godoc
// @Summary Live notification feed over server-sent events
// @Tags notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}

	sub, err := h.center.Subscribe(c.Request().Context(), uid)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case snap, ok := <-sub.Snapshots():
			if !ok {
				// Feed torn down, e.g. the session signed out.
				return nil
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.center.MarkAsRead(c.Request().Context(), uid, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "notification marked read"})
}

// MarkAllRead godoc
// @Summary Mark all unread notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} BulkReadResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return err
	}

	result, err := h.center.MarkAllAsRead(c.Request().Context(), uid)
	resp := BulkReadResponse{Total: len(result.Items)}
	for _, item := range result.Items {
		if item.Err != nil {
			resp.Failed = append(resp.Failed, item.ID)
		}
	}
	if err != nil {
		if err == notify.ErrPartialMarkRead {
			// Mixed state: some items succeeded, some failed.
			return c.JSON(http.StatusInternalServerError, resp)
		}
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}
