package handlers

import (
	"errors"
	"net/http"

	"github.com/claimsaver/go-services/internal/claims"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/pkg/metrics"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimsHandler serves the claimant-facing claim endpoints. All routes assume
// RequireUser ran and stored the caller on the context.
type ClaimsHandler struct {
	svc   *claims.Service
	users *users.Service
}

func NewClaimsHandler(svc *claims.Service, u *users.Service) *ClaimsHandler {
	return &ClaimsHandler{svc: svc, users: u}
}

func (h *ClaimsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/claims", h.List)
	rg.POST("/claims", h.Create)
	rg.GET("/claims/:id", h.Get)
}

// SubmitClaimRequest is the claim submission payload. Injuries is left untyped
// because form clients send it as an array, a JSON-encoded string, or not at
// all; the service normalizes it.
type SubmitClaimRequest struct {
	ClaimantName   string               `json:"claimantName" binding:"required"`
	ClaimantEmail  string               `json:"claimantEmail" binding:"required"`
	EstimatedValue float64              `json:"estimatedValue"`
	Accident       models.AccidentInfo  `json:"accident"`
	Insurance      models.InsuranceInfo `json:"insurance"`
	Vehicle        models.VehicleInfo   `json:"vehicle"`
	Injuries       interface{}          `json:"injuries"`
}

func (h *ClaimsHandler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claim := &models.Claim{
		UserID:         u.ClerkID,
		ClaimantName:   req.ClaimantName,
		ClaimantEmail:  req.ClaimantEmail,
		EstimatedValue: req.EstimatedValue,
		Accident:       req.Accident,
		Insurance:      req.Insurance,
		Vehicle:        req.Vehicle,
	}
	saved, err := h.svc.Submit(c.Request.Context(), claim, req.Injuries)
	if err != nil {
		internalError(c, err)
		return
	}
	h.users.NoteClaimAdded(c.Request.Context(), u.ClerkID)
	metrics.ClaimsSubmitted.WithLabelValues(string(saved.Priority)).Inc()
	c.JSON(http.StatusCreated, gin.H{"claim": saved})
}

func (h *ClaimsHandler) List(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	out, err := h.svc.ListMine(c.Request.Context(), u.ClerkID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": out})
}

// Get returns the caller's own claim. Another user's claim id answers 404,
// never the foreign data.
func (h *ClaimsHandler) Get(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}
	claim, err := h.svc.GetMine(c.Request.Context(), id, u.ClerkID)
	if err != nil {
		if errors.Is(err, claims.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}
