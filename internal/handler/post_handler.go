package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	// List は全記事のサマリーを作成順で返す。
	List(ctx context.Context) ([]post.Summary, error)
	// Get は指定IDの記事を返す。
	Get(ctx context.Context, id string) (*model.Post, error)
	// Create は記事を作成する。
	Create(ctx context.Context, identity model.Identity, fields post.Fields) (*model.Post, error)
	// Update は記事を編集する。
	Update(ctx context.Context, identity model.Identity, id string, fields post.Fields) (*model.Post, error)
	// Delete は記事を削除する。
	Delete(ctx context.Context, identity model.Identity, id string) error
}

// CommentServiceInterface はコメント操作が必要とするサービスインターフェース。
type CommentServiceInterface interface {
	// ListByPost は指定記事のコメントを作成順で返す。
	ListByPost(ctx context.Context, postID string) ([]*model.Comment, error)
	// Add は記事にコメントを追加する。
	Add(ctx context.Context, identity model.Identity, postID, body string) (*model.Comment, error)
}

// PostHandler は記事・コメント関連のHTTPハンドラー。
type PostHandler struct {
	postService    PostServiceInterface
	commentService CommentServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(postService PostServiceInterface, commentService CommentServiceInterface) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
	}
}

// postSummaryResponse は記事一覧のAPIレスポンス。
type postSummaryResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	Excerpt       string    `json:"excerpt"`
	CoverImageURL string    `json:"cover_image_url"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// postResponse は記事詳細のAPIレスポンス。
type postResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	Body          string    `json:"body"`
	CoverImageURL string    `json:"cover_image_url"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// commentResponse はコメントのAPIレスポンス。
type commentResponse struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// viewerResponse はページ表示用の閲覧者情報。
type viewerResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

// ListPosts はトップページの記事一覧を返す。
// GET /
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.postService.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	posts := make([]postSummaryResponse, len(summaries))
	for i, s := range summaries {
		posts[i] = postSummaryResponse{
			ID:            s.ID,
			Title:         s.Title,
			Subtitle:      s.Subtitle,
			Excerpt:       s.Excerpt,
			CoverImageURL: s.CoverImageURL,
			AuthorName:    s.AuthorName,
			CreatedAt:     s.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":  posts,
		"viewer": toViewerResponse(middleware.IdentityFromContext(r.Context())),
	})
}

// ShowPost は記事詳細とコメント一覧を返す。
// GET /post/{id}
func (h *PostHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	p, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	commentResponses := make([]commentResponse, len(comments))
	for i, c := range comments {
		commentResponses[i] = commentResponse{
			ID:         c.ID,
			Body:       c.Body,
			AuthorName: c.AuthorUsername,
			CreatedAt:  c.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":     toPostResponse(p),
		"comments": commentResponses,
		"viewer":   toViewerResponse(middleware.IdentityFromContext(r.Context())),
	})
}

// AddComment は記事へのコメント投稿を処理する。
// 成功時は記事ページへリダイレクトする。
// POST /post/{id}
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("フォームの解析に失敗しました"))
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if _, err := h.commentService.Add(r.Context(), identity, postID, r.PostFormValue("body")); err != nil {
		handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, "/post/"+postID, http.StatusSeeOther)
}

// ShowNewPost は記事作成ページ情報を返す。管理者以外には403を返す。
// GET /new-post
func (h *PostHandler) ShowNewPost(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if !authz.CanManagePosts(identity) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "new-post",
		"viewer": toViewerResponse(identity),
	})
}

// CreatePost は記事作成を処理する。
// 成功時はトップページへリダイレクトする。
// POST /new-post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("フォームの解析に失敗しました"))
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if _, err := h.postService.Create(r.Context(), identity, fieldsFromForm(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowEditPost は記事編集ページ情報（既存の記事フィールド）を返す。
// 管理者以外には403を返す。
// GET /edit-post/{id}
func (h *PostHandler) ShowEditPost(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if !authz.CanManagePosts(identity) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	p, err := h.postService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "edit-post",
		"post":   toPostResponse(p),
		"viewer": toViewerResponse(identity),
	})
}

// EditPost は記事編集を処理する。
// 成功時は記事ページへリダイレクトする。
// POST /edit-post/{id}
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidInputError("フォームの解析に失敗しました"))
		return
	}

	identity := middleware.IdentityFromContext(r.Context())
	if _, err := h.postService.Update(r.Context(), identity, postID, fieldsFromForm(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, "/post/"+postID, http.StatusSeeOther)
}

// DeletePost は記事削除を処理する。関連コメントも同時に削除される。
// 成功時はトップページへリダイレクトする。
// GET /delete/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if err := h.postService.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// --- ヘルパー関数 ---

// fieldsFromForm はフォーム値から記事フィールドを組み立てる。
func fieldsFromForm(r *http.Request) post.Fields {
	return post.Fields{
		Title:         r.PostFormValue("title"),
		Subtitle:      r.PostFormValue("subtitle"),
		Body:          r.PostFormValue("body"),
		CoverImageURL: r.PostFormValue("cover_image_url"),
	}
}

// toPostResponse はmodel.PostからAPIレスポンスに変換する。
func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:            p.ID,
		Title:         p.Title,
		Subtitle:      p.Subtitle,
		Body:          p.Body,
		CoverImageURL: p.CoverImageURL,
		AuthorName:    p.AuthorName,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// toViewerResponse はIdentityからページ表示用の閲覧者情報に変換する。
func toViewerResponse(identity model.Identity) viewerResponse {
	return viewerResponse{
		LoggedIn: identity.IsAuthenticated(),
		Username: identity.Username,
		IsAdmin:  authz.CanManagePosts(identity),
	}
}
