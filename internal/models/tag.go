package models

// Tag represents a tag name and its live-usage counter, stored in MongoDB.
// The name is unique and immutable; TotalPosts counts the live posts whose
// tag list contains this name. A tag at zero is deleted, never retained.
type Tag struct {
	Name       string `json:"name" bson:"name"`
	TotalPosts int64  `json:"total_posts" bson:"total_posts"`
}
