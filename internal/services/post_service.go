package services

import (
	"context"
	"time"

	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/repositories"
	"github.com/rs/zerolog/log"
)

// PostService orchestrates the post lifecycle across the post store, the
// comment store and the tag ledger. Every mutation that touches tag counters
// runs inside one transaction boundary so the ledger never drifts from the
// set of live posts. Input is trusted to be pre-validated by the surrounding
// pipeline; the only check performed here is the persisted-content bound
// enforced by the store itself.
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	ledger   *TagLedger
	tx       repositories.TxRunner
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	ledger *TagLedger,
	tx repositories.TxRunner,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		ledger:   ledger,
		tx:       tx,
	}
}

// Create persists a new post and registers each of its tags with the ledger
func (s *PostService) Create(ctx context.Context, author *models.User, content string, tags []string) error {
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		post := &models.Post{
			AuthorID: author.ID,
			Content:  content,
			Tags:     tags,
		}
		if err := s.posts.CreatePost(ctx, post); err != nil {
			return err
		}
		if err := s.ledger.SyncNewPost(ctx, tags); err != nil {
			log.Error().Err(err).Str("post", post.ID.Hex()).Msg("ledger sync failed after create")
			return err
		}
		return nil
	})
}

// Edit replaces a post's content and tags, stamps the edited timestamp and
// reconciles the ledger against the old tag list. Concurrent edits to the
// same post are last-write-wins; no version check is made here.
func (s *PostService) Edit(ctx context.Context, post *models.Post, content string, tags []string) error {
	oldTags := post.Tags
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now()
		post.Content = content
		post.Tags = tags
		post.EditedAt = &now
		if err := s.posts.UpdatePost(ctx, post); err != nil {
			return err
		}
		if err := s.ledger.SyncEditedPost(ctx, oldTags, tags); err != nil {
			log.Error().Err(err).Str("post", post.ID.Hex()).Msg("ledger sync failed after edit")
			return err
		}
		return nil
	})
}

// Delete removes the post, releases every tag reference it held and cascades
// to its comments. A comment never outlives its post.
func (s *PostService) Delete(ctx context.Context, post *models.Post) error {
	return s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.DeletePost(ctx, post.ID.Hex()); err != nil {
			return err
		}
		if err := s.ledger.SyncDeletedPost(ctx, post.Tags); err != nil {
			log.Error().Err(err).Str("post", post.ID.Hex()).Msg("ledger sync failed after delete")
			return err
		}
		return s.comments.DeleteCommentsByPostID(post.ID.Hex())
	})
}

// Save adds the user to the post's saved_by set. Saving a post the user has
// already saved changes nothing.
func (s *PostService) Save(ctx context.Context, post *models.Post, user *models.User) error {
	return s.posts.AddSavedBy(ctx, post.ID.Hex(), user.ID)
}

// Unsave removes the user from the post's saved_by set
func (s *PostService) Unsave(ctx context.Context, post *models.Post, user *models.User) error {
	return s.posts.RemoveSavedBy(ctx, post.ID.Hex(), user.ID)
}

// Comment creates a comment bound to the post and author and appends its
// reference to the post's comment list.
func (s *PostService) Comment(ctx context.Context, post *models.Post, user *models.User, text string) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID.Hex(),
		UserID: user.ID,
		Text:   text,
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, err
	}
	if err := s.posts.AppendCommentRef(ctx, post.ID.Hex(), comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}
