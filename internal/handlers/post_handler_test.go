package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/paperbird/backend/internal/handlers"
	"github.com/paperbird/backend/internal/middleware"
	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/services"
	"github.com/paperbird/backend/internal/testutil"
	"github.com/paperbird/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	e        *echo.Echo
	posts    *testutil.FakePostRepository
	tags     *testutil.FakeTagRepository
	comments *testutil.FakeCommentRepository
	users    *testutil.FakeUserRepository
	service  *services.PostService
}

var (
	alice = &models.User{ID: 1, Name: "test-0"}
	bob   = &models.User{ID: 2, Name: "test-1"}
)

// newFixture wires the handlers the way the router does, with in-memory
// stores and a stub gate that authenticates every request as actingUser.
func newFixture(actingUser *models.User) *fixture {
	posts := testutil.NewFakePostRepository()
	tags := testutil.NewFakeTagRepository()
	comments := testutil.NewFakeCommentRepository()
	users := testutil.NewFakeUserRepository(alice, bob)

	ledger := services.NewTagLedger(tags)
	tx := &testutil.SnapshotTxRunner{Posts: posts, Tags: tags}
	service := services.NewPostService(posts, comments, ledger, tx)

	e := echo.New()
	e.Validator = validators.NewValidator()

	asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.AuthUserKey, actingUser)
			return next(c)
		}
	}

	public := e.Group("")
	authed := e.Group("", asUser)

	postHandler := handlers.NewPostHandler(service, posts, users)
	postHandler.RegisterPostRoutes(authed)
	postHandler.RegisterPublicPostRoutes(public)

	savedHandler := handlers.NewSavedPostHandler(service, posts)
	savedHandler.RegisterSavedPostRoutes(authed)

	commentHandler := handlers.NewCommentHandler(service, comments, posts)
	commentHandler.RegisterCommentRoutes(authed)
	commentHandler.RegisterPublicCommentRoutes(public)

	tagHandler := handlers.NewTagHandler(tags, posts)
	tagHandler.RegisterTagRoutes(public)

	return &fixture{e: e, posts: posts, tags: tags, comments: comments, users: users, service: service}
}

func (f *fixture) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createPost(t *testing.T, user *models.User, content string, tags []string) *models.Post {
	t.Helper()
	require.NoError(t, f.service.Create(context.Background(), user, content, tags))
	live := f.posts.LivePosts()
	return &live[len(live)-1]
}

type errorsBody struct {
	Errors []validators.FieldError `json:"errors"`
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) []validators.FieldError {
	t.Helper()
	var body errorsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors
}

func TestCreatePost(t *testing.T) {
	f := newFixture(alice)

	rec := f.request(http.MethodPost, "/posts", url.Values{
		"content": {"Hello, this is a short post."},
		"tags":    {"hello,test"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	live := f.posts.LivePosts()
	require.Len(t, live, 1)
	assert.Equal(t, "Hello, this is a short post.", live[0].Content)
	assert.Equal(t, []string{"hello", "test"}, live[0].Tags)
	assert.Equal(t, alice.ID, live[0].AuthorID)
	assert.Equal(t, map[string]int64{"hello": 1, "test": 1}, f.tags.Totals())
}

func TestCreatePostValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tags    string
		wantMsg string
		path    string
	}{
		{
			name:    "empty content",
			content: "",
			tags:    "hello,test",
			wantMsg: "You cannot create an empty post.",
			path:    "content",
		},
		{
			name:    "content of length 25001",
			content: strings.Repeat("A", 25001),
			tags:    "hello,test",
			wantMsg: "Posts cannot be more than 25000 characters long.",
			path:    "content",
		},
		{
			name:    "six distinct tags",
			content: "Hello, this is a short post.",
			tags:    "0,1,2,3,4,5",
			wantMsg: "Posts cannot have more than 5 tags. Choose your tags wisely.",
			path:    "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(alice)
			rec := f.request(http.MethodPost, "/posts", url.Values{
				"content": {tt.content},
				"tags":    {tt.tags},
			})

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			errs := decodeErrors(t, rec)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantMsg, errs[0].Msg)
			assert.Equal(t, tt.path, errs[0].Path)
			assert.Empty(t, f.posts.LivePosts(), "nothing persisted on validation failure")
			assert.Empty(t, f.tags.Totals())
		})
	}
}

func TestEditPost(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, alice, "original", []string{"a", "b"})

	rec := f.request(http.MethodPut, "/post/"+post.ID.Hex(), url.Values{
		"content": {"Oh look, my content was edited."},
		"tags":    {"b,c"},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	edited, err := f.posts.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Oh look, my content was edited.", edited.Content)
	assert.Equal(t, []string{"b", "c"}, edited.Tags)
	assert.NotNil(t, edited.EditedAt)
	assert.Equal(t, map[string]int64{"b": 1, "c": 1}, f.tags.Totals())
}

func TestEditPostNotFound(t *testing.T) {
	f := newFixture(alice)

	rec := f.request(http.MethodPut, "/post/owowowo", url.Values{
		"content": {"whatever"},
		"tags":    {""},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditPostForbiddenForNonAuthor(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, bob, "This belongs to someone else.", []string{"a"})

	rec := f.request(http.MethodPut, "/post/"+post.ID.Hex(), url.Values{
		"content": {"hijacked"},
		"tags":    {"b"},
	})

	require.Equal(t, http.StatusForbidden, rec.Code)

	unchanged, err := f.posts.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "This belongs to someone else.", unchanged.Content)
	assert.Equal(t, []string{"a"}, unchanged.Tags)
	assert.Equal(t, map[string]int64{"a": 1}, f.tags.Totals(), "no ledger change on a forbidden edit")
}

func TestEditPostValidation(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, alice, "original", []string{"a"})

	rec := f.request(http.MethodPut, "/post/"+post.ID.Hex(), url.Values{
		"content": {""},
		"tags":    {"a"},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeErrors(t, rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "You cannot create an empty post.", errs[0].Msg)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, alice, "short-lived", []string{"b", "c"})

	rec := f.request(http.MethodDelete, "/post/"+post.ID.Hex(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, f.posts.LivePosts())
	assert.Empty(t, f.tags.Totals())
}

func TestDeletePostNotFoundAndForbidden(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, bob, "not yours", nil)

	rec := f.request(http.MethodDelete, "/post/notAPostId", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(http.MethodDelete, "/post/"+post.ID.Hex(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, f.posts.LivePosts(), 1)
}

func TestGetPostsByUser(t *testing.T) {
	f := newFixture(alice)
	f.createPost(t, alice, "This is a post.", []string{"post", "test"})

	rec := f.request(http.MethodGet, "/user/9999/posts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(http.MethodGet, "/user/2/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var empty []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Len(t, empty, 0)

	rec = f.request(http.MethodGet, "/user/1/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "This is a post.", posts[0].Content)
}

func TestSavePostIsIdempotentOverHTTP(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, bob, "bookmark me", nil)

	for i := 0; i < 2; i++ {
		rec := f.request(http.MethodPost, "/post/"+post.ID.Hex()+"/save", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	saved, err := f.posts.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, saved.SavedBy)

	rec := f.request(http.MethodDelete, "/post/"+post.ID.Hex()+"/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err = f.posts.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, saved.SavedBy)
}

func TestCommentOnPost(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, bob, "talk to me", nil)

	rec := f.request(http.MethodPost, "/post/"+post.ID.Hex()+"/comments", url.Values{
		"text": {"nice post"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "nice post", comment.Text)
	assert.Equal(t, alice.ID, comment.UserID)

	stored, err := f.posts.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []uint{comment.ID}, stored.Comments)

	rec = f.request(http.MethodGet, "/post/"+post.ID.Hex()+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice post", comments[0].Text)
}

func TestGetComment(t *testing.T) {
	f := newFixture(alice)
	post := f.createPost(t, bob, "talk to me", nil)

	rec := f.request(http.MethodPost, "/post/"+post.ID.Hex()+"/comments", url.Values{
		"text": {"nice post"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.request(http.MethodGet, "/comment/"+strconv.FormatUint(uint64(created.ID), 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "nice post", comment.Text)
	assert.Equal(t, post.ID.Hex(), comment.PostID)

	rec = f.request(http.MethodGet, "/comment/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(http.MethodGet, "/comment/notAnId", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagQuerySurface(t *testing.T) {
	f := newFixture(alice)
	f.createPost(t, alice, "p1", []string{"go", "db"})
	f.createPost(t, alice, "p2", []string{"go"})

	rec := f.request(http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Len(t, tags, 2)

	rec = f.request(http.MethodGet, "/tag/go/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 2)

	rec = f.request(http.MethodGet, "/tag/missing/posts", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
