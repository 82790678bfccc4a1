package claims

import (
	"context"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows and pages the admin claim listing.
type ListFilter struct {
	Status   models.ClaimStatus
	Priority models.ClaimPriority
	Page     int64
	Limit    int64
}

// ClaimRepository defines persistence operations for claims
type ClaimRepository interface {
	Insert(ctx context.Context, c *models.Claim) error
	GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Claim, error)
	ListByUser(ctx context.Context, userID string) ([]models.Claim, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Claim, error)
	List(ctx context.Context, f ListFilter) ([]models.Claim, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, note *models.Note) (*models.Claim, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoClaimRepository implements ClaimRepository using MongoDB
type MongoClaimRepository struct {
	col *mongo.Collection
}

func NewMongoClaimRepository(col *mongo.Collection) *MongoClaimRepository {
	return &MongoClaimRepository{col: col}
}

func (r *MongoClaimRepository) Insert(ctx context.Context, c *models.Claim) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// GetByIDForUser returns the claim only when it belongs to userID. A claim
// owned by someone else is indistinguishable from a missing one.
func (r *MongoClaimRepository) GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Claim, error) {
	var c models.Claim
	err := r.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoClaimRepository) ListByUser(ctx context.Context, userID string) ([]models.Claim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Claim{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoClaimRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Claim, error) {
	var c models.Claim
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoClaimRepository) List(ctx context.Context, f ListFilter) ([]models.Claim, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Claim{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoClaimRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, note *models.Note) (*models.Claim, error) {
	set["updatedAt"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if note != nil {
		update["$push"] = bson.M{"notes": note}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Claim
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoClaimRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
