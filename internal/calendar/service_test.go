package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeEventRepo struct {
	byID map[primitive.ObjectID]*models.CalendarEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: map[primitive.ObjectID]*models.CalendarEvent{}}
}

func (f *fakeEventRepo) Insert(ctx context.Context, e *models.CalendarEvent) error {
	e.ID = primitive.NewObjectID()
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) ListByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	out := []models.CalendarEvent{}
	for _, e := range f.byID {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.CalendarEvent, error) {
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	if c, ok := set["completed"].(bool); ok {
		e.Completed = c
	}
	if tl, ok := set["title"].(string); ok {
		e.Title = tl
	}
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	e, ok := f.byID[id]
	if !ok || e.UserID != userID {
		return mongo.ErrNoDocuments
	}
	delete(f.byID, id)
	return nil
}

func TestCreateRequiresTitleAndDate(t *testing.T) {
	svc := NewService(newFakeEventRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &models.CalendarEvent{UserID: "u1", Date: time.Now()}); err == nil {
		t.Fatal("expected error for missing title")
	}
	if _, err := svc.Create(ctx, &models.CalendarEvent{UserID: "u1", Title: "IME appointment"}); err == nil {
		t.Fatal("expected error for missing date")
	}

	e, err := svc.Create(ctx, &models.CalendarEvent{
		UserID: "u1", Title: "IME appointment", Date: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if e.Type != models.EventReminder {
		t.Fatalf("expected default type reminder, got %s", e.Type)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newFakeEventRepo())
	_, err := svc.Create(context.Background(), &models.CalendarEvent{
		UserID: "u1", Title: "x", Date: time.Now(), Type: "party",
	})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestUpdateScopedToOwner(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, err := svc.Create(ctx, &models.CalendarEvent{
		UserID: "owner", Title: "deadline", Date: time.Now(), Type: models.EventDeadline,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	done := true
	if _, err := svc.Update(ctx, e.ID, "intruder", EventUpdate{Completed: &done}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign event, got: %v", err)
	}
	got, err := svc.Update(ctx, e.ID, "owner", EventUpdate{Completed: &done})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if !got.Completed {
		t.Fatal("expected completed flag set")
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewService(repo)
	ctx := context.Background()

	e, _ := svc.Create(ctx, &models.CalendarEvent{
		UserID: "owner", Title: "hearing", Date: time.Now(), Type: models.EventCourtDate,
	})
	if err := svc.Delete(ctx, e.ID, "intruder"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := svc.Delete(ctx, e.ID, "owner"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}
