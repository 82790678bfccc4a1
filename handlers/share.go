package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/claimsaver/go-services/internal/config"
	"github.com/claimsaver/go-services/internal/documents"
	"github.com/claimsaver/go-services/internal/mailer"
	"github.com/claimsaver/go-services/internal/tokens"
	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/claimsaver/go-services/pkg/metrics"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareHandler issues signed document share links and redeems them. The share
// endpoint sits behind RequireUser; redemption is public, gated only by the
// signed token.
type ShareHandler struct {
	docs *documents.Service
	mail mailer.Mailer
	cfg  config.ShareConfig
}

func NewShareHandler(docs *documents.Service, mail mailer.Mailer, cfg config.ShareConfig) *ShareHandler {
	return &ShareHandler{docs: docs, mail: mail, cfg: cfg}
}

// ShareRequest is the POST /api/share-document payload.
type ShareRequest struct {
	DocumentID     string `json:"documentId" binding:"required"`
	RecipientEmail string `json:"recipientEmail" binding:"required"`
	Message        string `json:"message"`
}

func (h *ShareHandler) Share(c *gin.Context) {
	if h.cfg.Secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document sharing is not configured"})
		return
	}
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := primitive.ObjectIDFromHex(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}
	doc, err := h.docs.GetMine(c.Request.Context(), id, u.ClerkID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		internalError(c, err)
		return
	}

	tok, err := tokens.GenerateShareToken(h.cfg.Secret, doc.ID.Hex(), h.cfg.LinkTTL)
	if err != nil {
		internalError(c, err)
		return
	}
	link := strings.TrimRight(h.cfg.BaseURL, "/") + "/api/shared/" + tok

	sent := true
	if h.mail == nil {
		sent = false
	} else {
		sender := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if sender == "" {
			sender = u.Email
		}
		if err := h.mail.SendShareEmail(c.Request.Context(), req.RecipientEmail, sender, doc.Name, link, req.Message); err != nil {
			// the link is still valid; report the send failure without failing
			// the request
			logger.Errorf("share email to %s failed: %v", req.RecipientEmail, err)
			sent = false
		}
	}
	if sent {
		metrics.SharesSent.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "link": link})
}

// Redeem streams the shared document to anyone holding an unexpired token.
func (h *ShareHandler) Redeem(c *gin.Context) {
	if h.cfg.Secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document sharing is not configured"})
		return
	}
	docID, err := tokens.ParseShareToken(h.cfg.Secret, c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired share link"})
		return
	}
	id, err := primitive.ObjectIDFromHex(docID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid share link"})
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		internalError(c, err)
		return
	}
	body, err := h.docs.Open(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, documents.ErrNoStorage) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document storage is not configured"})
			return
		}
		internalError(c, err)
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Name))
	c.DataFromReader(http.StatusOK, doc.Size, contentType, body, nil)
}
