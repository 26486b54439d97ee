// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/blogman/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// IdentityResolver はセッショントークンから認証主体を解決するインターフェース。
// 解決は失敗せず、無効なトークンはAnonymousとして返る。
type IdentityResolver interface {
	IdentityFromToken(ctx context.Context, token string) model.Identity
}

// NewSessionMiddleware はセッションCookieからリクエストの認証主体を解決し、
// コンテキストに注入するミドルウェアを返す。
// Cookieが無い・無効な場合もリクエストを拒否せず、Anonymousとして通過させる。
// 認可の判定は各ハンドラーがポリシーに問い合わせて行う。
func NewSessionMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := model.Anonymous()

			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				identity = resolver.IdentityFromToken(r.Context(), cookie.Value)
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext はリクエストコンテキストから認証主体を取得する。
// セッションミドルウェアを通過していない場合はAnonymousを返す。
func IdentityFromContext(ctx context.Context) model.Identity {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok {
		return model.Anonymous()
	}
	return identity
}

// ContextWithIdentity はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
