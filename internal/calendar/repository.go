package calendar

import (
	"context"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository defines persistence operations for calendar events
type EventRepository interface {
	Insert(ctx context.Context, e *models.CalendarEvent) error
	ListByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error)
	Update(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id primitive.ObjectID, userID string) error
}

// MongoEventRepository implements EventRepository using MongoDB
type MongoEventRepository struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) *MongoEventRepository {
	return &MongoEventRepository{col: col}
}

func (r *MongoEventRepository) Insert(ctx context.Context, e *models.CalendarEvent) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, e)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid
	}
	return nil
}

func (r *MongoEventRepository) ListByUser(ctx context.Context, userID string) ([]models.CalendarEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.CalendarEvent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoEventRepository) Update(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.CalendarEvent, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.CalendarEvent
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set}, opts).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoEventRepository) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
