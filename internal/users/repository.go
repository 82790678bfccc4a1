package users

import (
	"context"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	EnsureByClerkID(ctx context.Context, u *models.User) (*models.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, page, limit int64) ([]models.User, int64, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeactivateByClerkID(ctx context.Context, clerkID string) error
	IncCounters(ctx context.Context, clerkID string, claims, documents int) error
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// EnsureByClerkID upserts the user keyed by clerkId. Profile fields are always
// refreshed; role, active flag and permissions are only written on insert so an
// admin's elevation survives later provisioning calls. The upsert makes
// concurrent first requests from the same new user converge on one record.
// An empty email is never written: the partial unique index on email only
// covers documents that carry the field, so incomplete records cannot collide
// with each other.
func (r *MongoUserRepository) EnsureByClerkID(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()

	set := bson.M{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"updatedAt": now,
	}
	if u.Email != "" {
		set["email"] = u.Email
	}
	filter := bson.M{"clerkId": u.ClerkID}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"clerkId":        u.ClerkID,
			"role":           models.RoleUser,
			"isActive":       true,
			"permissions":    models.Permissions{},
			"claimsCount":    0,
			"documentsCount": 0,
			"createdAt":      now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		// A concurrent upsert for the same clerkId can trip the unique index;
		// the losing writer re-reads the record the winner created.
		if mongo.IsDuplicateKeyError(err) {
			return r.GetByClerkID(ctx, u.ClerkID)
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"clerkId": clerkID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) List(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoUserRepository) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoUserRepository) DeactivateByClerkID(ctx context.Context, clerkID string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"clerkId": clerkID}, bson.M{
		"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()},
	})
	return err
}

// IncCounters adjusts the denormalized usage counters on the user record.
func (r *MongoUserRepository) IncCounters(ctx context.Context, clerkID string, claims, documents int) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"clerkId": clerkID}, bson.M{
		"$inc": bson.M{"claimsCount": claims, "documentsCount": documents},
	})
	return err
}
