package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxContentLength is the persisted content bound. The request validator
// accepts up to 25000 characters; the store refuses anything over this.
const MaxContentLength = 2500

// ErrContentTooLong is returned when a post's content exceeds MaxContentLength.
var ErrContentTooLong = errors.New("post content exceeds 2500 characters")

// Post represents a post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"` // immutable once set
	Content   string             `json:"content" bson:"content"`
	Tags      []string           `json:"tags" bson:"tags"`
	SavedBy   []uint             `json:"saved_by" bson:"saved_by"` // set of user IDs, maintained with $addToSet
	Comments  []uint             `json:"comments" bson:"comments"` // ordered comment row IDs
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	EditedAt  *time.Time         `json:"edited_at" bson:"edited_at"` // nil until the first edit
}

// Validate enforces the persisted-content invariant independently of the
// request-level validator.
func (p *Post) Validate() error {
	if len(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// PostInput defines the request body for creating or editing a post.
// Tags arrive as a single comma-separated string and are split and
// deduplicated by the validators package before reaching the service layer.
type PostInput struct {
	Content string `json:"content" form:"content"`
	Tags    string `json:"tags" form:"tags"`
}
