package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/paperbird/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations.
// GetPostByID returns (nil, nil) when the ID does not resolve to a live post;
// callers translate that into their own not-found handling.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	GetPostsByTag(ctx context.Context, tag string) ([]models.Post, error)
	GetPostsSavedBy(ctx context.Context, userID uint) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	AddSavedBy(ctx context.Context, id string, userID uint) error
	RemoveSavedBy(ctx context.Context, id string, userID uint) error
	AppendCommentRef(ctx context.Context, id string, commentID uint) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost inserts a new post. The author reference and created timestamp
// are set here and never change afterwards.
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.SavedBy == nil {
		post.SavedBy = []uint{}
	}
	if post.Comments == nil {
		post.Comments = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID. An unparseable ID is treated the same
// as a missing document: not found.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor retrieves all posts authored by a user, newest first
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author_id": authorID})
}

// GetPostsByTag retrieves all live posts whose tag list contains the tag
func (r *MongoPostRepository) GetPostsByTag(ctx context.Context, tag string) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"tags": tag})
}

// GetPostsSavedBy retrieves all posts a user has saved
func (r *MongoPostRepository) GetPostsSavedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"saved_by": userID})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	posts := []models.Post{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost persists an edit. Only content, tags and the edited timestamp
// are writable; author, created timestamp, saved_by and comments are not
// touched by this path.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"content":   post.Content,
			"tags":      post.Tags,
			"edited_at": post.EditedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// AddSavedBy adds a user to the post's saved_by set. $addToSet makes the
// operation idempotent: saving twice leaves the user listed exactly once.
func (r *MongoPostRepository) AddSavedBy(ctx context.Context, id string, userID uint) error {
	return r.updateByHexID(ctx, id, bson.M{"$addToSet": bson.M{"saved_by": userID}})
}

// RemoveSavedBy removes a user from the post's saved_by set
func (r *MongoPostRepository) RemoveSavedBy(ctx context.Context, id string, userID uint) error {
	return r.updateByHexID(ctx, id, bson.M{"$pull": bson.M{"saved_by": userID}})
}

// AppendCommentRef appends a comment ID to the post's ordered comment list
func (r *MongoPostRepository) AppendCommentRef(ctx context.Context, id string, commentID uint) error {
	return r.updateByHexID(ctx, id, bson.M{"$push": bson.M{"comments": commentID}})
}

func (r *MongoPostRepository) updateByHexID(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}
