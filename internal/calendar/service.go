package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("event not found")

// Service wraps the repository with event validation.
type Service struct {
	repo EventRepository
}

func NewService(r EventRepository) *Service {
	return &Service{repo: r}
}

// Create validates and stores a new event for userID.
func (s *Service) Create(ctx context.Context, e *models.CalendarEvent) (*models.CalendarEvent, error) {
	if e.UserID == "" {
		return nil, fmt.Errorf("event missing owning user")
	}
	if e.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if e.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	if e.Type == "" {
		e.Type = models.EventReminder
	}
	if !models.ValidEventType(e.Type) {
		return nil, fmt.Errorf("invalid event type %q", e.Type)
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	return s.repo.ListByUser(ctx, userID)
}

// EventUpdate carries the editable fields; nil means unchanged.
type EventUpdate struct {
	Title     *string               `json:"title,omitempty"`
	Date      *time.Time            `json:"date,omitempty"`
	Type      *models.EventType     `json:"type,omitempty"`
	Priority  *models.ClaimPriority `json:"priority,omitempty"`
	Completed *bool                 `json:"completed,omitempty"`
}

// Update edits the user's own event; a foreign or missing id yields ErrNotFound.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, userID string, upd EventUpdate) (*models.CalendarEvent, error) {
	set := bson.M{}
	if upd.Title != nil && *upd.Title != "" {
		set["title"] = *upd.Title
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Type != nil {
		if !models.ValidEventType(*upd.Type) {
			return nil, fmt.Errorf("invalid event type %q", *upd.Type)
		}
		set["type"] = *upd.Type
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	e, err := s.repo.Update(ctx, id, userID, set)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	err := s.repo.Delete(ctx, id, userID)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}
