package repositories

import (
	"context"
	"errors"

	"github.com/paperbird/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrTagNotFound is returned by DecrementTotal when no tag with the given
// name exists.
var ErrTagNotFound = errors.New("tag not found")

// TagRepository provides the per-tag atomic counter primitives the ledger is
// built on. Each increment/decrement is a single server-side read-modify-write
// on total_posts, so concurrent mutations touching the same tag cannot lose
// updates.
type TagRepository interface {
	IncrementTotal(ctx context.Context, name string) error
	DecrementTotal(ctx context.Context, name string) (int64, error)
	DeleteIfZero(ctx context.Context, name string) error
	GetTag(ctx context.Context, name string) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// MongoTagRepository implements TagRepository for MongoDB
type MongoTagRepository struct {
	collection *mongo.Collection
}

// NewMongoTagRepository creates a new MongoTagRepository
func NewMongoTagRepository(db *mongo.Database) *MongoTagRepository {
	return &MongoTagRepository{collection: db.Collection("tags")}
}

// EnsureIndexes creates the unique index on name. The upsert in
// IncrementTotal relies on it: without uniqueness, two concurrent first uses
// of a tag name can each insert their own document.
func (r *MongoTagRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, tagNameIndex())
	return err
}

func tagNameIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

// IncrementTotal bumps the tag's counter by one, creating the record at 1 if
// the tag has never been used.
func (r *MongoTagRepository) IncrementTotal(ctx context.Context, name string) error {
	opts := options.FindOneAndUpdate().SetUpsert(true)
	for {
		res := r.collection.FindOneAndUpdate(ctx,
			bson.M{"name": name},
			bson.M{"$inc": bson.M{"total_posts": 1}},
			opts,
		)
		err := res.Err()
		if err == nil || err == mongo.ErrNoDocuments {
			// ErrNoDocuments here just means the upsert created the record
			return nil
		}
		// Two concurrent first uses of the same name race their upserts;
		// the unique index rejects the loser, whose retry then finds the
		// winner's document and increments it.
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return err
	}
}

// DecrementTotal lowers the tag's counter by one and returns the new total.
// Returns ErrTagNotFound when the tag does not exist.
func (r *MongoTagRepository) DecrementTotal(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var tag models.Tag
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"total_posts": -1}},
		opts,
	).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrTagNotFound
		}
		return 0, err
	}
	return tag.TotalPosts, nil
}

// DeleteIfZero removes the tag record only while its counter is still at or
// below zero. The conditional filter means a concurrent registration that
// already re-raised the counter keeps the record alive.
func (r *MongoTagRepository) DeleteIfZero(ctx context.Context, name string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{
		"name":        name,
		"total_posts": bson.M{"$lte": 0},
	})
	return err
}

// GetTag retrieves a tag by name, returning (nil, nil) when it does not exist
func (r *MongoTagRepository) GetTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// ListTags retrieves every tag, sorted by name
func (r *MongoTagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
