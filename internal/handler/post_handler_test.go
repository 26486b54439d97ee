package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
)

// --- モック定義 ---

// mockPostService はPostServiceInterfaceのモック実装。
type mockPostService struct {
	listFn   func(ctx context.Context) ([]post.Summary, error)
	getFn    func(ctx context.Context, id string) (*model.Post, error)
	createFn func(ctx context.Context, identity model.Identity, fields post.Fields) (*model.Post, error)
	updateFn func(ctx context.Context, identity model.Identity, id string, fields post.Fields) (*model.Post, error)
	deleteFn func(ctx context.Context, identity model.Identity, id string) error
}

func (m *mockPostService) List(ctx context.Context) ([]post.Summary, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewPostNotFoundError(id)
}

func (m *mockPostService) Create(ctx context.Context, identity model.Identity, fields post.Fields) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identity, fields)
	}
	return &model.Post{ID: "post-1"}, nil
}

func (m *mockPostService) Update(ctx context.Context, identity model.Identity, id string, fields post.Fields) (*model.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, identity, id, fields)
	}
	return &model.Post{ID: id}, nil
}

func (m *mockPostService) Delete(ctx context.Context, identity model.Identity, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, identity, id)
	}
	return nil
}

// mockCommentService はCommentServiceInterfaceのモック実装。
type mockCommentService struct {
	listByPostFn func(ctx context.Context, postID string) ([]*model.Comment, error)
	addFn        func(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error)
}

func (m *mockCommentService) ListByPost(ctx context.Context, postID string) ([]*model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentService) Add(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error) {
	if m.addFn != nil {
		return m.addFn(ctx, identity, postID, body)
	}
	return &model.Comment{ID: "comment-1"}, nil
}

func adminIdentity() model.Identity {
	return model.Identity{UserID: "admin-1", Username: "admin", Role: model.RoleAdmin}
}

func memberIdentity() model.Identity {
	return model.Identity{UserID: "member-1", Username: "member", Role: model.RoleMember}
}

// postRouter はURLパラメータ解決のためのテスト用ルーターを構築する。
func postRouter(h *PostHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListPosts)
	r.Get("/post/{id}", h.ShowPost)
	r.Post("/post/{id}", h.AddComment)
	r.Get("/new-post", h.ShowNewPost)
	r.Post("/new-post", h.CreatePost)
	r.Get("/edit-post/{id}", h.ShowEditPost)
	r.Post("/edit-post/{id}", h.EditPost)
	r.Get("/delete/{id}", h.DeletePost)
	return r
}

// --- GET / テスト ---

func TestPostHandler_ListPosts(t *testing.T) {
	svc := &mockPostService{
		listFn: func(ctx context.Context) ([]post.Summary, error) {
			return []post.Summary{
				{ID: "post-1", Title: "Hello", Excerpt: "抜粋", AuthorName: "admin"},
			}, nil
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Posts []struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Excerpt string `json:"excerpt"`
		} `json:"posts"`
		Viewer struct {
			LoggedIn bool `json:"logged_in"`
		} `json:"viewer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if len(body.Posts) != 1 || body.Posts[0].Title != "Hello" {
		t.Errorf("posts = %+v", body.Posts)
	}
	if body.Viewer.LoggedIn {
		t.Error("未認証の閲覧者がlogged_in=true")
	}
}

// --- GET /post/{id} テスト ---

func TestPostHandler_ShowPost_WithComments(t *testing.T) {
	svc := &mockPostService{
		getFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id, Title: "Hello", Body: "<p>本文</p>", AuthorName: "admin"}, nil
		},
	}
	comments := &mockCommentService{
		listByPostFn: func(ctx context.Context, postID string) ([]*model.Comment, error) {
			return []*model.Comment{
				{ID: "comment-1", Body: "first", AuthorUsername: "member"},
			}, nil
		},
	}
	h := NewPostHandler(svc, comments)

	req := httptest.NewRequest(http.MethodGet, "/post/post-1", nil)
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Post struct {
			ID   string `json:"id"`
			Body string `json:"body"`
		} `json:"post"`
		Comments []struct {
			AuthorName string `json:"author_name"`
		} `json:"comments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v", err)
	}
	if body.Post.ID != "post-1" {
		t.Errorf("post.ID = %q, want post-1", body.Post.ID)
	}
	if len(body.Comments) != 1 || body.Comments[0].AuthorName != "member" {
		t.Errorf("comments = %+v", body.Comments)
	}
}

func TestPostHandler_ShowPost_NotFound(t *testing.T) {
	h := NewPostHandler(&mockPostService{}, &mockCommentService{})

	req := httptest.NewRequest(http.MethodGet, "/post/missing", nil)
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// --- POST /post/{id} テスト ---

func TestPostHandler_AddComment_Success(t *testing.T) {
	var gotPostID, gotBody string
	comments := &mockCommentService{
		addFn: func(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error) {
			gotPostID = postID
			gotBody = body
			return &model.Comment{ID: "comment-1"}, nil
		},
	}
	h := NewPostHandler(&mockPostService{}, comments)

	form := url.Values{"body": {"nice post"}}
	req := formRequest(http.MethodPost, "/post/post-1", form)
	req = withIdentity(req, memberIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/post/post-1" {
		t.Errorf("Location = %q, want %q", loc, "/post/post-1")
	}
	if gotPostID != "post-1" || gotBody != "nice post" {
		t.Errorf("postID = %q, body = %q", gotPostID, gotBody)
	}
}

func TestPostHandler_AddComment_AnonymousForbidden(t *testing.T) {
	comments := &mockCommentService{
		addFn: func(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error) {
			return nil, model.NewForbiddenError()
		},
	}
	h := NewPostHandler(&mockPostService{}, comments)

	req := formRequest(http.MethodPost, "/post/post-1", url.Values{"body": {"x"}})
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// --- GET /new-post テスト ---

func TestPostHandler_ShowNewPost_AdminOnly(t *testing.T) {
	h := NewPostHandler(&mockPostService{}, &mockCommentService{})

	// 管理者: 200
	req := httptest.NewRequest(http.MethodGet, "/new-post", nil)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("admin status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// 一般会員: 403
	req = httptest.NewRequest(http.MethodGet, "/new-post", nil)
	req = withIdentity(req, memberIdentity())
	w = httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("member status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}

	// 未認証: 403
	req = httptest.NewRequest(http.MethodGet, "/new-post", nil)
	w = httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("anonymous status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// --- POST /new-post テスト ---

func TestPostHandler_CreatePost_Success(t *testing.T) {
	var gotFields post.Fields
	svc := &mockPostService{
		createFn: func(ctx context.Context, identity model.Identity, fields post.Fields) (*model.Post, error) {
			gotFields = fields
			return &model.Post{ID: "post-1"}, nil
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	form := url.Values{
		"title":           {"Hello"},
		"subtitle":        {"sub"},
		"body":            {"<p>本文</p>"},
		"cover_image_url": {"https://example.com/cover.png"},
	}
	req := formRequest(http.MethodPost, "/new-post", form)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
	if gotFields.Title != "Hello" || gotFields.CoverImageURL != "https://example.com/cover.png" {
		t.Errorf("fields = %+v", gotFields)
	}
}

func TestPostHandler_CreatePost_DuplicateTitle(t *testing.T) {
	svc := &mockPostService{
		createFn: func(ctx context.Context, identity model.Identity, fields post.Fields) (*model.Post, error) {
			return nil, model.NewDuplicateTitleError(fields.Title)
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := formRequest(http.MethodPost, "/new-post", url.Values{"title": {"Hello"}})
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- POST /edit-post/{id} テスト ---

func TestPostHandler_EditPost_RedirectsToPost(t *testing.T) {
	svc := &mockPostService{
		updateFn: func(ctx context.Context, identity model.Identity, id string, fields post.Fields) (*model.Post, error) {
			return &model.Post{ID: id}, nil
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := formRequest(http.MethodPost, "/edit-post/post-1", url.Values{"title": {"Hello"}})
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/post/post-1" {
		t.Errorf("Location = %q, want %q", loc, "/post/post-1")
	}
}

func TestPostHandler_EditPost_MemberForbidden(t *testing.T) {
	svc := &mockPostService{
		updateFn: func(ctx context.Context, identity model.Identity, id string, fields post.Fields) (*model.Post, error) {
			return nil, model.NewForbiddenError()
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := formRequest(http.MethodPost, "/edit-post/post-1", url.Values{"title": {"Hacked"}})
	req = withIdentity(req, memberIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// --- GET /delete/{id} テスト ---

func TestPostHandler_DeletePost_Success(t *testing.T) {
	deleted := ""
	svc := &mockPostService{
		deleteFn: func(ctx context.Context, identity model.Identity, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := httptest.NewRequest(http.MethodGet, "/delete/post-1", nil)
	req = withIdentity(req, adminIdentity())
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
	if deleted != "post-1" {
		t.Errorf("deleted = %q, want %q", deleted, "post-1")
	}
}

func TestPostHandler_DeletePost_AnonymousForbidden(t *testing.T) {
	svc := &mockPostService{
		deleteFn: func(ctx context.Context, identity model.Identity, id string) error {
			return model.NewForbiddenError()
		},
	}
	h := NewPostHandler(svc, &mockCommentService{})

	req := httptest.NewRequest(http.MethodGet, "/delete/post-1", nil)
	w := httptest.NewRecorder()
	postRouter(h).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}
