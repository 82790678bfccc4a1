package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/claimsaver/go-services/internal/calendar"
	"github.com/claimsaver/go-services/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memEventRepo is an in-memory EventRepository.
type memEventRepo struct {
	mu    sync.Mutex
	store map[primitive.ObjectID]*models.CalendarEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{store: map[primitive.ObjectID]*models.CalendarEvent{}}
}

func (r *memEventRepo) Insert(ctx context.Context, e *models.CalendarEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = primitive.NewObjectID()
	r.store[e.ID] = e
	return nil
}

func (r *memEventRepo) ListByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.CalendarEvent{}
	for _, e := range r.store {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memEventRepo) Update(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.store[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	if v, ok := set["title"]; ok {
		e.Title = v.(string)
	}
	if v, ok := set["date"]; ok {
		e.Date = v.(time.Time)
	}
	if v, ok := set["type"]; ok {
		e.Type = v.(models.EventType)
	}
	if v, ok := set["completed"]; ok {
		e.Completed = v.(bool)
	}
	cp := *e
	return &cp, nil
}

func (r *memEventRepo) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.store[id]
	if !ok || e.UserID != userID {
		return mongo.ErrNoDocuments
	}
	delete(r.store, id)
	return nil
}

func calendarRouter(repo *memEventRepo, u *models.User) *gin.Engine {
	h := NewCalendarHandler(calendar.NewService(repo))
	g := gin.New()
	api := g.Group("/api", asUser(u))
	h.Register(api)
	return g
}

func TestCreateEventDefaultsToReminder(t *testing.T) {
	g := calendarRouter(newMemEventRepo(), testUser("u1"))

	body, _ := json.Marshal(gin.H{"title": "IME appointment", "date": time.Now().Add(48 * time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/api/calendar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusCreated, rw.Code)
	var resp struct {
		Event models.CalendarEvent `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &resp))
	require.Equal(t, models.EventReminder, resp.Event.Type)
	require.Equal(t, "u1", resp.Event.UserID)
}

func TestCreateEventBadType(t *testing.T) {
	g := calendarRouter(newMemEventRepo(), testUser("u1"))

	body, _ := json.Marshal(gin.H{"title": "x", "date": time.Now(), "type": "vacation"})
	req := httptest.NewRequest(http.MethodPost, "/api/calendar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestUpdateForeignEvent(t *testing.T) {
	repo := newMemEventRepo()
	e := &models.CalendarEvent{UserID: "owner", Title: "hearing", Date: time.Now(), Type: models.EventCourtDate}
	require.NoError(t, repo.Insert(t.Context(), e))

	g := calendarRouter(repo, testUser("other"))
	req := httptest.NewRequest(http.MethodPut, "/api/calendar/"+e.ID.Hex(),
		bytes.NewReader([]byte(`{"completed": true}`)))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusNotFound, rw.Code)
}

func TestDeleteEvent(t *testing.T) {
	repo := newMemEventRepo()
	e := &models.CalendarEvent{UserID: "u1", Title: "deadline", Date: time.Now(), Type: models.EventDeadline}
	require.NoError(t, repo.Insert(t.Context(), e))

	g := calendarRouter(repo, testUser("u1"))
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodDelete, "/api/calendar/"+e.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rw.Code)

	rw2 := httptest.NewRecorder()
	g.ServeHTTP(rw2, httptest.NewRequest(http.MethodDelete, "/api/calendar/"+e.ID.Hex(), nil))
	require.Equal(t, http.StatusNotFound, rw2.Code)
}
