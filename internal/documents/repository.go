package documents

import (
	"context"
	"time"

	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository defines persistence operations for document metadata
type DocumentRepository interface {
	Insert(ctx context.Context, d *models.Document) error
	GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Document, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateMeta(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.Document, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoDocumentRepository implements DocumentRepository using MongoDB
type MongoDocumentRepository struct {
	col *mongo.Collection
}

func NewMongoDocumentRepository(col *mongo.Collection) *MongoDocumentRepository {
	return &MongoDocumentRepository{col: col}
}

func (r *MongoDocumentRepository) Insert(ctx context.Context, d *models.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, d)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return nil
}

func (r *MongoDocumentRepository) GetByIDForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.Document, error) {
	var d models.Document
	err := r.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoDocumentRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var d models.Document
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoDocumentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoDocumentRepository) UpdateMeta(ctx context.Context, id primitive.ObjectID, userID string, set bson.M) (*models.Document, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d models.Document
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoDocumentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
