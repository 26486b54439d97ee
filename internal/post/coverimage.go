package post

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/security"
)

// CoverImageChecker はカバー画像URLの検証インターフェース。
type CoverImageChecker interface {
	// Check はURLが安全で、画像として到達可能であることを検証する。
	Check(ctx context.Context, rawURL string) error
}

// HTTPCoverImageChecker はSSRF防止付きHTTPクライアントでカバー画像を確認する実装。
// 静的なURL検証の後、HEADリクエストでContent-Typeがimage/*であることを確認する。
type HTTPCoverImageChecker struct {
	guard  security.URLGuardService
	client *http.Client
}

// NewHTTPCoverImageChecker はHTTPCoverImageCheckerを生成する。
// 到達確認にはguardが生成するSSRF防止付きクライアントを使用する。
func NewHTTPCoverImageChecker(guard security.URLGuardService, timeout time.Duration) *HTTPCoverImageChecker {
	return &HTTPCoverImageChecker{
		guard:  guard,
		client: guard.NewSafeClient(timeout),
	}
}

// Check はカバー画像URLを検証する。
// プライベートネットワークを指すURL、画像以外のコンテンツはエラーになる。
func (c *HTTPCoverImageChecker) Check(ctx context.Context, rawURL string) error {
	if err := c.guard.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("カバー画像URLが不正です: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("カバー画像リクエストの生成に失敗しました: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("カバー画像の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("カバー画像の取得に失敗しました: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("カバー画像のContent-Typeが不正です: %s", contentType)
	}

	return nil
}

// compile-time interface check
var _ CoverImageChecker = (*HTTPCoverImageChecker)(nil)
