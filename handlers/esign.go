package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/claimsaver/go-services/internal/documents"
	"github.com/claimsaver/go-services/internal/esign"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EsignHandler serves e-signature envelope creation and status lookup over the
// caller's own documents. Routes assume RequireUser ran.
type EsignHandler struct {
	sender esign.EnvelopeSender
	docs   *documents.Service
}

func NewEsignHandler(sender esign.EnvelopeSender, docs *documents.Service) *EsignHandler {
	return &EsignHandler{sender: sender, docs: docs}
}

func (h *EsignHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/docusign/envelope", h.CreateEnvelope)
	rg.GET("/docusign/envelope/:id", h.EnvelopeStatus)
}

// EnvelopeRequest names the document to send and its signer.
type EnvelopeRequest struct {
	DocumentID     string `json:"documentId" binding:"required"`
	RecipientName  string `json:"recipientName" binding:"required"`
	RecipientEmail string `json:"recipientEmail" binding:"required"`
	Subject        string `json:"subject"`
}

func (h *EsignHandler) CreateEnvelope(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "e-signature is not configured"})
		return
	}
	var req EnvelopeRequest
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
	body, err := h.docs.Open(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, documents.ErrNoStorage) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document storage is not configured"})
			return
		}
		internalError(c, err)
		return
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		internalError(c, err)
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = "Please sign: " + doc.Name
	}
	env, err := h.sender.CreateEnvelope(c.Request.Context(), esign.EnvelopeInput{
		Subject:        subject,
		DocumentName:   doc.Name,
		DocumentBytes:  raw,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"envelope": env})
}

func (h *EsignHandler) EnvelopeStatus(c *gin.Context) {
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "e-signature is not configured"})
		return
	}
	env, err := h.sender.EnvelopeStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		internalError(c, err)
		return
	}
	if env == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "envelope not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"envelope": env})
}
