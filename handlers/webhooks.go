package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/claimsaver/go-services/internal/identity"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/internal/webhooks"
	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/claimsaver/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
)

// WebhooksHandler processes identity-provider webhooks. Deliveries are
// verified against the endpoint signing secret and deduplicated by delivery id
// so provider retries stay idempotent.
type WebhooksHandler struct {
	users *users.Service
	wh    *svix.Webhook
	dedup webhooks.Deduper
}

func NewWebhooksHandler(u *users.Service, signingSecret string, dedup webhooks.Deduper) (*WebhooksHandler, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, err
	}
	if dedup == nil {
		dedup = webhooks.NoopDeduper{}
	}
	return &WebhooksHandler{users: u, wh: wh, dedup: dedup}, nil
}

func (h *WebhooksHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/webhooks/clerk", h.HandleClerk)
}

// clerkEvent mirrors the provider's webhook envelope for the user.* events.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string `json:"id"`
		FirstName             string `json:"first_name"`
		LastName              string `json:"last_name"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
		EmailAddresses        []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

func (e *clerkEvent) primaryEmail() string {
	for _, ea := range e.Data.EmailAddresses {
		if ea.ID == e.Data.PrimaryEmailAddressID {
			return ea.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (h *WebhooksHandler) HandleClerk(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	if err := h.wh.Verify(payload, c.Request.Header); err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	var evt clerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	deliveryID := c.GetHeader("svix-id")
	if deliveryID != "" {
		seen, err := h.dedup.Seen(c.Request.Context(), deliveryID)
		if err != nil {
			logger.Warnf("webhook dedup check failed for %s: %v", deliveryID, err)
		} else if seen {
			metrics.WebhookEvents.WithLabelValues(evt.Type, "duplicate").Inc()
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
	}

	outcome := "ok"
	switch evt.Type {
	case "user.created", "user.updated":
		p := &identity.Profile{
			ID:        evt.Data.ID,
			Email:     evt.primaryEmail(),
			FirstName: evt.Data.FirstName,
			LastName:  evt.Data.LastName,
		}
		if _, err := h.users.UpsertFromWebhook(c.Request.Context(), p); err != nil {
			logger.Errorf("webhook %s upsert failed: %v", evt.Type, err)
			outcome = "error"
		}
	case "user.deleted":
		if err := h.users.DeactivateFromWebhook(c.Request.Context(), evt.Data.ID); err != nil {
			logger.Errorf("webhook user.deleted deactivate failed: %v", err)
			outcome = "error"
		}
	default:
		outcome = "ignored"
	}
	if outcome == "error" && deliveryID != "" {
		// release the id so the provider's retry is processed, not skipped
		if err := h.dedup.Forget(c.Request.Context(), deliveryID); err != nil {
			logger.Warnf("webhook dedup release failed for %s: %v", deliveryID, err)
		}
	}
	metrics.WebhookEvents.WithLabelValues(evt.Type, outcome).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
