package models

import "gorm.io/gorm"

// Comment represents a comment on a post. Comments are never edited and are
// deleted only when their post is deleted.
type Comment struct {
	gorm.Model
	PostID string `json:"post_id" gorm:"index"` // MongoDB ObjectID of the owning post, immutable
	UserID uint   `json:"user_id" gorm:"index"` // ID of the user who made the comment
	Text   string `json:"text" validate:"required,min=1"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" form:"text" validate:"required,min=1"`
}
