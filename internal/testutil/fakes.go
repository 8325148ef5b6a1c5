// Package testutil provides in-memory fakes for the repository interfaces so
// service and handler tests run without PostgreSQL or MongoDB.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// FakePostRepository is an in-memory PostRepository
type FakePostRepository struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

var _ repositories.PostRepository = (*FakePostRepository)(nil)

func NewFakePostRepository() *FakePostRepository {
	return &FakePostRepository{posts: make(map[string]*models.Post)}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.SavedBy = append([]uint{}, p.SavedBy...)
	c.Comments = append([]uint{}, p.Comments...)
	return &c
}

func (r *FakePostRepository) CreatePost(_ context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	r.posts[post.ID.Hex()] = clonePost(post)
	return nil
}

func (r *FakePostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(post), nil
}

func (r *FakePostRepository) GetPostsByAuthor(_ context.Context, authorID uint) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (r *FakePostRepository) GetPostsByTag(_ context.Context, tag string) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		for _, t := range p.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

func (r *FakePostRepository) GetPostsSavedBy(_ context.Context, userID uint) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		for _, id := range p.SavedBy {
			if id == userID {
				return true
			}
		}
		return false
	})
}

func (r *FakePostRepository) filter(keep func(*models.Post) bool) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, *clonePost(p))
		}
	}
	return out, nil
}

func (r *FakePostRepository) UpdatePost(_ context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[post.ID.Hex()]
	if !ok {
		return fmt.Errorf("post not found")
	}
	stored.Content = post.Content
	stored.Tags = append([]string{}, post.Tags...)
	stored.EditedAt = post.EditedAt
	return nil
}

func (r *FakePostRepository) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post not found")
	}
	delete(r.posts, id)
	return nil
}

func (r *FakePostRepository) AddSavedBy(_ context.Context, id string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post not found")
	}
	for _, existing := range post.SavedBy {
		if existing == userID {
			return nil
		}
	}
	post.SavedBy = append(post.SavedBy, userID)
	return nil
}

func (r *FakePostRepository) RemoveSavedBy(_ context.Context, id string, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post not found")
	}
	kept := post.SavedBy[:0]
	for _, existing := range post.SavedBy {
		if existing != userID {
			kept = append(kept, existing)
		}
	}
	post.SavedBy = kept
	return nil
}

func (r *FakePostRepository) AppendCommentRef(_ context.Context, id string, commentID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("post not found")
	}
	post.Comments = append(post.Comments, commentID)
	return nil
}

// LivePosts returns a copy of every stored post
func (r *FakePostRepository) LivePosts() []models.Post {
	posts, _ := r.filter(func(*models.Post) bool { return true })
	return posts
}

func (r *FakePostRepository) snapshot() map[string]*models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*models.Post, len(r.posts))
	for id, p := range r.posts {
		snap[id] = clonePost(p)
	}
	return snap
}

func (r *FakePostRepository) restore(snap map[string]*models.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = snap
}

// FakeTagRepository is an in-memory TagRepository with the same per-tag
// counter semantics as the Mongo implementation. Errors can be injected per
// tag name to exercise ledger failure paths.
type FakeTagRepository struct {
	mu     sync.Mutex
	totals map[string]int64

	IncrementErr map[string]error
	DecrementErr map[string]error

	IncrementCalls int
	DecrementCalls int
}

var _ repositories.TagRepository = (*FakeTagRepository)(nil)

func NewFakeTagRepository() *FakeTagRepository {
	return &FakeTagRepository{totals: make(map[string]int64)}
}

func (r *FakeTagRepository) IncrementTotal(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IncrementCalls++
	if err := r.IncrementErr[name]; err != nil {
		return err
	}
	r.totals[name]++
	return nil
}

func (r *FakeTagRepository) DecrementTotal(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DecrementCalls++
	if err := r.DecrementErr[name]; err != nil {
		return 0, err
	}
	if _, ok := r.totals[name]; !ok {
		return 0, repositories.ErrTagNotFound
	}
	r.totals[name]--
	return r.totals[name], nil
}

func (r *FakeTagRepository) DeleteIfZero(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if total, ok := r.totals[name]; ok && total <= 0 {
		delete(r.totals, name)
	}
	return nil
}

func (r *FakeTagRepository) GetTag(_ context.Context, name string) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total, ok := r.totals[name]
	if !ok {
		return nil, nil
	}
	return &models.Tag{Name: name, TotalPosts: total}, nil
}

func (r *FakeTagRepository) ListTags(_ context.Context) ([]models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags := []models.Tag{}
	for name, total := range r.totals {
		tags = append(tags, models.Tag{Name: name, TotalPosts: total})
	}
	return tags, nil
}

// Totals returns a copy of the counter map
func (r *FakeTagRepository) Totals() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[string]int64, len(r.totals))
	for name, total := range r.totals {
		totals[name] = total
	}
	return totals
}

func (r *FakeTagRepository) restore(totals map[string]int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals = totals
}

// FakeCommentRepository is an in-memory CommentRepository
type FakeCommentRepository struct {
	mu       sync.Mutex
	comments []models.Comment
	nextID   uint
}

var _ repositories.CommentRepository = (*FakeCommentRepository)(nil)

func NewFakeCommentRepository() *FakeCommentRepository {
	return &FakeCommentRepository{nextID: 1}
}

func (r *FakeCommentRepository) CreateComment(comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.nextID
	r.nextID++
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *FakeCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeCommentRepository) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *FakeCommentRepository) DeleteCommentsByPostID(postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}

// FakeUserRepository is an in-memory UserRepository
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

var _ repositories.UserRepository = (*FakeUserRepository)(nil)

func NewFakeUserRepository(users ...*models.User) *FakeUserRepository {
	r := &FakeUserRepository{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *FakeUserRepository) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *FakeUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.FirebaseUID == firebaseUID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// SnapshotTxRunner mimics the transactional boundary: it snapshots the post
// and tag stores before running fn and restores them when fn fails, so a
// failed ledger step leaves no partial post mutation behind.
type SnapshotTxRunner struct {
	Posts *FakePostRepository
	Tags  *FakeTagRepository
}

var _ repositories.TxRunner = (*SnapshotTxRunner)(nil)

func (r *SnapshotTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	postSnap := r.Posts.snapshot()
	tagSnap := r.Tags.Totals()
	if err := fn(ctx); err != nil {
		r.Posts.restore(postSnap)
		r.Tags.restore(tagSnap)
		return err
	}
	return nil
}
