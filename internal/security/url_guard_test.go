package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewSafeClient はSSRF防止付きHTTPクライアントの生成をテストする。
func TestNewSafeClient(t *testing.T) {
	guard := NewURLGuard()
	timeout := 5 * time.Second

	client := guard.NewSafeClient(timeout)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != timeout {
		t.Errorf("timeout = %v, want %v", client.Timeout, timeout)
	}
	// safeurlはDialerのControlフックでIP検証を行うため標準Transportではない
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport")
	}
}

// TestNewSafeClientBlocksLoopback はループバックへのリクエストがブロックされることをテストする。
// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	guard := NewURLGuard()
	client := guard.NewSafeClient(5 * time.Second)

	if _, err := client.Get(ts.URL); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

// TestValidateURL_PublicURL は公開URLの検証が成功することをテストする。
func TestValidateURL_PublicURL(t *testing.T) {
	guard := NewURLGuard()

	publicURLs := []string{
		"https://example.com/cover.png",
		"https://images.example.com/photos/1.jpg",
		"http://blog.example.org/banner.webp",
	}

	for _, u := range publicURLs {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err != nil {
				t.Errorf("ValidateURL(%q) returned error: %v", u, err)
			}
		})
	}
}

// TestValidateURL_PrivateIP はプライベートIPアドレスの拒否をテストする。
func TestValidateURL_PrivateIP(t *testing.T) {
	guard := NewURLGuard()

	privateURLs := []string{
		"http://10.0.0.1/cover.png",
		"http://172.16.0.1/cover.png",
		"http://172.31.255.255/cover.png",
		"http://192.168.1.100/cover.png",
	}

	for _, u := range privateURLs {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err == nil {
				t.Errorf("ValidateURL(%q) should have returned error for private IP", u)
			}
		})
	}
}

// TestValidateURL_LoopbackAndLinkLocal はループバックとリンクローカルの拒否をテストする。
func TestValidateURL_LoopbackAndLinkLocal(t *testing.T) {
	guard := NewURLGuard()

	blockedURLs := []string{
		"http://127.0.0.1/cover.png",
		"http://localhost/cover.png",
		"http://169.254.169.254/latest/meta-data/", // クラウドメタデータIP
		"http://0.0.0.0/cover.png",
		"http://[::1]/cover.png",
	}

	for _, u := range blockedURLs {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err == nil {
				t.Errorf("ValidateURL(%q) should have returned error", u)
			}
		})
	}
}

// TestValidateURL_InvalidURL は無効なURLの検証が失敗することをテストする。
func TestValidateURL_InvalidURL(t *testing.T) {
	guard := NewURLGuard()

	invalidURLs := []string{
		"",
		"not-a-url",
		"ftp://example.com/cover.png",
		"file:///etc/passwd",
		"gopher://example.com",
	}

	for _, u := range invalidURLs {
		t.Run(u, func(t *testing.T) {
			if err := guard.ValidateURL(u); err == nil {
				t.Errorf("ValidateURL(%q) should have returned error for invalid URL", u)
			}
		})
	}
}

// TestURLGuardInterface はURLGuardServiceインターフェースの適合を検証する。
func TestURLGuardInterface(t *testing.T) {
	var _ URLGuardService = NewURLGuard()
}
