package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/entitlement-service/internal/adapter/repository"
	"github.com/wekeepgrowing/entitlement-service/internal/middleware/auth"
	"go.uber.org/zap"
)

const defaultEventListLimit = 50

// EventsHandler exposes the webhook event audit log to operators.
type EventsHandler struct {
	logger *zap.Logger
	events repository.EventLogRepository
}

func NewEventsHandler(logger *zap.Logger, events repository.EventLogRepository) *EventsHandler {
	return &EventsHandler{
		logger: logger,
		events: events,
	}
}

func (h *EventsHandler) GetRecentEvents(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if user == nil {
		return err
	}

	if h.events == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error": "Event log is not configured",
		})
	}

	limit := defaultEventListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.events.GetRecentEvents(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list webhook events",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve webhook events",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}
