package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/blogman/internal/middleware"
)

// DBPinger はヘルスチェックに必要なデータベース接続確認のインターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// PageHandler は静的ページとヘルスチェックのHTTPハンドラー。
type PageHandler struct {
	db DBPinger
}

// NewPageHandler はPageHandlerを生成する。dbはnilを許容する（ヘルスチェックでDB確認をスキップ）。
func NewPageHandler(db DBPinger) *PageHandler {
	return &PageHandler{db: db}
}

// About は自己紹介ページ情報を返す。
// GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "about",
		"viewer": toViewerResponse(middleware.IdentityFromContext(r.Context())),
	})
}

// Contact は問い合わせページ情報を返す。
// GET /contact
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "contact",
		"viewer": toViewerResponse(middleware.IdentityFromContext(r.Context())),
	})
}

// Health はサーバーとデータベース接続の稼働状態を返す。
// GET /health
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
