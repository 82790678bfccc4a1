package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/claimsaver/go-services/internal/calendar"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CalendarHandler serves the user-scoped calendar CRUD. Routes assume
// RequireUser ran.
type CalendarHandler struct {
	svc *calendar.Service
}

func NewCalendarHandler(svc *calendar.Service) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

func (h *CalendarHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/calendar", h.List)
	rg.POST("/calendar", h.Create)
	rg.PUT("/calendar/:id", h.Update)
	rg.DELETE("/calendar/:id", h.Delete)
}

// CreateEventRequest is the event creation payload.
type CreateEventRequest struct {
	Title    string               `json:"title" binding:"required"`
	Date     time.Time            `json:"date" binding:"required"`
	Type     models.EventType     `json:"type"`
	Priority models.ClaimPriority `json:"priority"`
}

func (h *CalendarHandler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := &models.CalendarEvent{
		UserID:   u.ClerkID,
		Title:    req.Title,
		Date:     req.Date,
		Type:     req.Type,
		Priority: req.Priority,
	}
	saved, err := h.svc.Create(c.Request.Context(), e)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": saved})
}

func (h *CalendarHandler) List(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (h *CalendarHandler) Update(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	var upd calendar.EventUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, u.ClerkID, upd)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *CalendarHandler) Delete(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, u.ClerkID); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
