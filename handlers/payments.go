package handlers

import (
	"math"
	"net/http"

	"github.com/claimsaver/go-services/internal/payments"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// PaymentsHandler serves checkout session creation and validation. Routes
// assume RequireUser ran.
type PaymentsHandler struct {
	provider payments.CheckoutProvider
}

func NewPaymentsHandler(p payments.CheckoutProvider) *PaymentsHandler {
	return &PaymentsHandler{provider: p}
}

func (h *PaymentsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/create-checkout-session", h.CreateSession)
	rg.POST("/validate-session", h.ValidateSession)
}

// CheckoutRequest carries the amount in dollars plus claim context.
type CheckoutRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
	ClaimID     string  `json:"claimId"`
}

func (h *PaymentsHandler) CreateSession(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	desc := req.Description
	if desc == "" {
		desc = "ClaimSaver+ service fee"
	}
	out, err := h.provider.CreateCheckout(c.Request.Context(), payments.CheckoutInput{
		AmountCents:   int64(math.Round(req.Amount * 100)),
		Description:   desc,
		ClaimID:       req.ClaimID,
		UserID:        u.ClerkID,
		CustomerEmail: u.Email,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": out.SessionID, "url": out.URL})
}

// ValidateSessionRequest carries the session id returned by checkout.
type ValidateSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func (h *PaymentsHandler) ValidateSession(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	var req ValidateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := h.provider.ValidateSession(c.Request.Context(), req.SessionID)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": status})
}
