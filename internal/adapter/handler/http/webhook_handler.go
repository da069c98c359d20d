package http

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	logger            *zap.Logger
	webhookSecret     string
	billingConfigured bool
	webhooks          *usecase.WebhookService
}

func NewWebhookHandler(logger *zap.Logger, webhookSecret string, billingConfigured bool, webhooks *usecase.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		logger:            logger,
		webhookSecret:     webhookSecret,
		billingConfigured: billingConfigured,
		webhooks:          webhooks,
	}
}

// HandleWebhook verifies the provider signature against the raw request body
// and hands the event to the ingester. Deployments without a webhook secret
// acknowledge everything untouched rather than bouncing provider retries.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	if !h.billingConfigured {
		return c.String(http.StatusInternalServerError, "Missing Stripe secret key")
	}

	if h.webhookSecret == "" {
		return c.JSON(http.StatusOK, echo.Map{
			"ok":   true,
			"note": "No webhook secret configured",
		})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.String(http.StatusBadRequest, "Error reading request body")
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if sig == "" {
		return c.String(http.StatusBadRequest, "Missing Stripe-Signature header")
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Error("Webhook signature verification failed", zap.Error(err))
		return c.String(http.StatusBadRequest, "Webhook Error: "+err.Error())
	}

	h.logger.Info("Webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Time("created", time.Unix(event.Created, 0)),
	)

	if err := h.webhooks.Ingest(c.Request().Context(), event); err != nil {
		h.logger.Error("Webhook processing failed",
			zap.String("id", event.ID),
			zap.Error(err))
		return c.String(http.StatusInternalServerError, "Webhook handler failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
