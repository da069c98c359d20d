package http

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
	"go.uber.org/zap"
)

// customerCookieName is the client-identity binding: a long-lived cookie
// whose value is the billing provider's customer ID.
const customerCookieName = "stripe_cid"

// customerCookieMaxAge is one year, matching the binding's fixed lifetime.
const customerCookieMaxAge = 60 * 60 * 24 * 365

type AccessHandler struct {
	logger       *zap.Logger
	entitlements *usecase.EntitlementService
}

func NewAccessHandler(logger *zap.Logger, entitlements *usecase.EntitlementService) *AccessHandler {
	return &AccessHandler{
		logger:       logger,
		entitlements: entitlements,
	}
}

type accessResponse struct {
	HasAccess        bool       `json:"hasAccess"`
	Status           *string    `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	TrialEnd         *time.Time `json:"trialEnd"`
}

// CheckAccess reports whether the bound customer currently holds paid access.
// This endpoint is polled on every protected page load: it always answers 200
// and degrades every failure to a denial.
func (h *AccessHandler) CheckAccess(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-store")

	customerID := h.customerIDFromCookie(c)
	if customerID == "" {
		return c.JSON(http.StatusOK, accessResponse{})
	}

	decision := h.entitlements.Resolve(c.Request().Context(), customerID)

	resp := accessResponse{HasAccess: decision.HasAccess}
	if decision.Snapshot != nil {
		resp.Status = &decision.Snapshot.Status
		resp.CurrentPeriodEnd = decision.Snapshot.CurrentPeriodEnd
		resp.TrialEnd = decision.Snapshot.TrialEnd
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AccessHandler) customerIDFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(customerCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return cookie.Value
	}
	return value
}
