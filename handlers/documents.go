package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/claimsaver/go-services/internal/documents"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/internal/users"
	"github.com/claimsaver/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxUploadBytes caps a single document upload.
const maxUploadBytes = 25 << 20

// DocumentsHandler serves the document metadata and byte endpoints. Routes
// assume RequireUser ran.
type DocumentsHandler struct {
	svc   *documents.Service
	users *users.Service
}

func NewDocumentsHandler(svc *documents.Service, u *users.Service) *DocumentsHandler {
	return &DocumentsHandler{svc: svc, users: u}
}

func (h *DocumentsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/documents", h.List)
	rg.POST("/documents", h.Upload)
	rg.GET("/documents/:id", h.Get)
	rg.PUT("/documents/:id", h.Update)
	rg.DELETE("/documents/:id", h.Delete)
	rg.GET("/documents/:id/view", h.View)
	rg.GET("/documents/:id/download", h.Download)
}

// Upload accepts a multipart form with a `file` part plus `category` and
// optional `description` fields.
func (h *DocumentsHandler) Upload(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds the %d MB limit", maxUploadBytes>>20)})
		return
	}
	category := models.DocumentCategory(c.DefaultPostForm("category", string(models.CategoryOther)))

	f, err := fh.Open()
	if err != nil {
		internalError(c, err)
		return
	}
	defer f.Close()

	doc, err := h.svc.Upload(c.Request.Context(), documents.UploadInput{
		OwnerID:     u.ClerkID,
		Name:        fh.Filename,
		Category:    category,
		Description: c.PostForm("description"),
		MimeType:    fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNoStorage):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document storage is not configured"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, err)
		}
		return
	}
	h.users.NoteDocumentAdded(c.Request.Context(), u.ClerkID, 1)
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (h *DocumentsHandler) List(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

// ownDocument resolves :id to the caller's own document, writing the error
// response itself on failure.
func (h *DocumentsHandler) ownDocument(c *gin.Context) *models.Document {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return nil
	}
	doc, err := h.svc.GetMine(c.Request.Context(), id, u.ClerkID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return nil
		}
		internalError(c, err)
		return nil
	}
	return doc
}

func (h *DocumentsHandler) Get(c *gin.Context) {
	doc := h.ownDocument(c)
	if doc == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *DocumentsHandler) View(c *gin.Context) {
	h.stream(c, "inline")
}

func (h *DocumentsHandler) Download(c *gin.Context) {
	h.stream(c, "attachment")
}

func (h *DocumentsHandler) stream(c *gin.Context, disposition string) {
	doc := h.ownDocument(c)
	if doc == nil {
		return
	}
	body, err := h.svc.Open(c.Request.Context(), doc)
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
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Name))
	c.DataFromReader(http.StatusOK, doc.Size, contentType, body, nil)
}

func (h *DocumentsHandler) Update(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}
	var upd documents.MetaUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.svc.UpdateMeta(c.Request.Context(), id, u.ClerkID, upd)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *DocumentsHandler) Delete(c *gin.Context) {
	doc := h.ownDocument(c)
	if doc == nil {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), doc); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		internalError(c, err)
		return
	}
	u := middleware.CurrentUser(c)
	h.users.NoteDocumentAdded(c.Request.Context(), u.ClerkID, -1)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
