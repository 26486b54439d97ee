package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	IdentityResolver middleware.IdentityResolver
	RateLimiter      *middleware.RateLimiter
	CSRFConfig       middleware.CSRFConfig
	Logger           *slog.Logger

	// MetricsMiddleware はリクエストのステータス・レイテンシを記録する。nilを許容する。
	MetricsMiddleware func(next http.Handler) http.Handler

	// MetricsHandler は/metricsエンドポイントのハンドラー。nilを許容する。
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 記事・コメント
	PostService    PostServiceInterface
	CommentService CommentServiceInterface

	// ヘルスチェック
	DB DBPinger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Session → Logging → Metrics → CSRF
//
// /health と /metrics はセッション・CSRF検証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	postHandler := NewPostHandler(deps.PostService, deps.CommentService)
	pageHandler := NewPageHandler(deps.DB)

	// --- 運用エンドポイント ---
	r.Get("/health", pageHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- アプリケーションルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.IdentityResolver))
		if deps.Logger != nil {
			r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		}
		if deps.MetricsMiddleware != nil {
			r.Use(deps.MetricsMiddleware)
		}
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// 公開ページ
		r.Get("/", postHandler.ListPosts)
		r.Get("/about", pageHandler.About)
		r.Get("/contact", pageHandler.Contact)
		r.Get("/post/{id}", postHandler.ShowPost)

		// 登録・ログイン（総当たり対策の専用レート制限を適用）
		r.Get("/register", authHandler.ShowRegister)
		r.With(deps.RateLimiter.CredentialMiddleware()).Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		r.With(deps.RateLimiter.CredentialMiddleware()).Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// 書き込み操作（一般レート制限を適用）
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/post/{id}", postHandler.AddComment)

		// 記事管理（管理者のみ）
		r.Get("/new-post", postHandler.ShowNewPost)
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/new-post", postHandler.CreatePost)
		r.Get("/edit-post/{id}", postHandler.ShowEditPost)
		r.With(deps.RateLimiter.WriteMiddleware()).Post("/edit-post/{id}", postHandler.EditPost)
		r.Get("/delete/{id}", postHandler.DeletePost)
	})

	return r
}
