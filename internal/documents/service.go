package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/claimsaver/go-services/internal/models"
	"github.com/claimsaver/go-services/internal/storage"
	"github.com/claimsaver/go-services/pkg/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrNoStorage is returned when no storage backend is configured. Uploads
	// fail loudly instead of recording metadata for bytes that were never kept.
	ErrNoStorage = errors.New("document storage not configured")
)

// Service owns document metadata and delegates the bytes to a storage.Store.
type Service struct {
	repo  DocumentRepository
	store storage.Store
}

// NewService creates a document service. store may be nil; uploads and reads
// then return ErrNoStorage.
func NewService(r DocumentRepository, store storage.Store) *Service {
	return &Service{repo: r, store: store}
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	OwnerID     string
	Name        string
	Category    models.DocumentCategory
	Description string
	MimeType    string
	Size        int64
	Body        io.Reader
}

// Upload stores the bytes first and the metadata record second, so a metadata
// row never points at bytes that failed to land.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	if s.store == nil {
		return nil, ErrNoStorage
	}
	if in.OwnerID == "" || in.Name == "" {
		return nil, fmt.Errorf("owner and file name are required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, fmt.Errorf("invalid category %q", in.Category)
	}

	key := in.OwnerID + "/" + uuid.NewString() + path.Ext(in.Name)
	if err := s.store.Upload(ctx, key, in.Body, in.Size, in.MimeType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	d := &models.Document{
		UserID:      in.OwnerID,
		Name:        in.Name,
		Category:    in.Category,
		StorageKey:  key,
		MimeType:    in.MimeType,
		Size:        in.Size,
		Description: in.Description,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		// roll back the orphaned object; best effort
		if derr := s.store.Delete(ctx, key); derr != nil {
			logger.Warnf("failed to remove orphaned object %s: %v", key, derr)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Document, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetMine returns the user's document or ErrNotFound, also when the id exists
// but belongs to a different user.
func (s *Service) GetMine(ctx context.Context, id primitive.ObjectID, userID string) (*models.Document, error) {
	d, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// Get returns the document regardless of owner (share redemption, admin).
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// Open returns a reader over the stored bytes for the given document.
func (s *Service) Open(ctx context.Context, d *models.Document) (io.ReadCloser, error) {
	if s.store == nil {
		return nil, ErrNoStorage
	}
	return s.store.Download(ctx, d.StorageKey)
}

// UpdateMeta edits name/description/category on the user's own document.
type MetaUpdate struct {
	Name        *string                  `json:"name,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Category    *models.DocumentCategory `json:"category,omitempty"`
}

func (s *Service) UpdateMeta(ctx context.Context, id primitive.ObjectID, userID string, upd MetaUpdate) (*models.Document, error) {
	set := bson.M{}
	if upd.Name != nil && *upd.Name != "" {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		if !models.ValidCategory(*upd.Category) {
			return nil, fmt.Errorf("invalid category %q", *upd.Category)
		}
		set["category"] = *upd.Category
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	d, err := s.repo.UpdateMeta(ctx, id, userID, set)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// Delete removes the metadata record and then best-effort unlinks the stored
// object. The metadata delete is authoritative; a failed object removal is
// logged and swallowed.
func (s *Service) Delete(ctx context.Context, d *models.Document) error {
	if err := s.repo.Delete(ctx, d.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	if s.store != nil {
		if err := s.store.Delete(ctx, d.StorageKey); err != nil {
			logger.Warnf("failed to remove stored object %s: %v", d.StorageKey, err)
		}
	}
	return nil
}
