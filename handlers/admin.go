package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claimsaver/go-services/internal/claims"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminHandler serves the back-office endpoints. Routes are mounted on a group
// already gated by RequireUser + RequireAdmin.
type AdminHandler struct {
	users  *users.Service
	claims *claims.Service
}

func NewAdminHandler(u *users.Service, cl *claims.Service) *AdminHandler {
	return &AdminHandler{users: u, claims: cl}
}

func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.POST("/users", h.CreateUser)
	rg.GET("/users/:id", h.GetUser)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)

	rg.GET("/claims", h.ListClaims)
	rg.GET("/claims/:id", h.GetClaim)
	rg.PUT("/claims/:id", h.UpdateClaim)
	rg.DELETE("/claims/:id", h.DeleteClaim)
}

func pageParams(c *gin.Context) (int64, int64) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	list, total, err := h.users.List(c.Request.Context(), page, limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "total": total, "page": page, "limit": limit})
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	ClerkID   string      `json:"clerkId" binding:"required"`
	Email     string      `json:"email" binding:"required"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"role"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u := &models.User{
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	saved, err := h.users.Create(c.Request.Context(), u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": saved})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var upd users.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.Update(c.Request.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *AdminHandler) ListClaims(c *gin.Context) {
	page, limit := pageParams(c)
	f := claims.ListFilter{
		Status:   models.ClaimStatus(c.Query("status")),
		Priority: models.ClaimPriority(c.Query("priority")),
		Page:     page,
		Limit:    limit,
	}
	list, total, err := h.claims.List(c.Request.Context(), f)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": list, "total": total, "page": page, "limit": limit})
}

func (h *AdminHandler) GetClaim(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}
	claim, err := h.claims.Get(c.Request.Context(), id)
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

func (h *AdminHandler) UpdateClaim(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}
	var upd claims.AdminUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	author := "admin"
	if u := middleware.CurrentUser(c); u != nil {
		if u.FirstName != "" || u.LastName != "" {
			author = u.FirstName + " " + u.LastName
		} else if u.Email != "" {
			author = u.Email
		}
	}
	claim, err := h.claims.Update(c.Request.Context(), id, upd, author)
	if err != nil {
		switch {
		case errors.Is(err, claims.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}

func (h *AdminHandler) DeleteClaim(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}
	if err := h.claims.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, claims.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
