package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/entitlement-service/internal/domain/errors"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
	"go.uber.org/zap"
)

type LinkHandler struct {
	logger *zap.Logger
	links  *usecase.SessionLinkService
}

func NewLinkHandler(logger *zap.Logger, links *usecase.SessionLinkService) *LinkHandler {
	return &LinkHandler{
		logger: logger,
		links:  links,
	}
}

type LinkSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// LinkSession resolves a completed checkout session and binds the resulting
// customer ID to the client via a persistent cookie. The cookie is the only
// server-recognized identity; there is no session table behind it.
func (h *LinkHandler) LinkSession(c echo.Context) error {
	var req LinkSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Missing session_id")
	}
	if err := c.Validate(&req); err != nil {
		return c.String(http.StatusBadRequest, "Missing session_id")
	}

	link, err := h.links.Link(c.Request().Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSession) {
			return c.String(http.StatusBadRequest, "Invalid session")
		}
		if errors.Is(err, domainErrors.ErrBillingNotConfigured) {
			return c.String(http.StatusInternalServerError, "Missing Stripe secret key.")
		}
		h.logger.Error("Session link failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		return c.String(http.StatusInternalServerError, "Link failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     customerCookieName,
		Value:    url.QueryEscape(link.CustomerID),
		Path:     "/",
		MaxAge:   customerCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"ok":         true,
		"customerId": link.CustomerID,
		"sub":        link.Snapshot,
	})
}
