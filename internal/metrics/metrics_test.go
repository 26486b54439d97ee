package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue は指定名のカウンターの合計値を返す。未登録の場合は-1を返す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return -1
}

// labeledCounterValues は指定名のカウンターをラベル値ごとに集計して返す。
func labeledCounterValues(t *testing.T, reg *prometheus.Registry, name, label string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label {
					counts[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return counts
}

func TestNewCollector_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	// 各メトリクスを1回ずつ記録して登録を確認する
	c.RecordHTTPStatus(200)
	c.RecordRequestLatency(10 * time.Millisecond)
	c.RecordRegistration()
	c.RecordLogin(true)
	c.RecordPostCreated()
	c.RecordPostDeleted()
	c.RecordCommentCreated()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	registered := map[string]bool{}
	for _, mf := range families {
		registered[mf.GetName()] = true
	}

	names := []string{
		"blogman_http_status_total",
		"blogman_request_latency_seconds",
		"blogman_registrations_total",
		"blogman_logins_total",
		"blogman_posts_created_total",
		"blogman_posts_deleted_total",
		"blogman_comments_created_total",
	}
	for _, name := range names {
		if !registered[name] {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	counts := labeledCounterValues(t, reg, "blogman_http_status_total", "status_code")
	if counts["200"] != 2 {
		t.Errorf("status_code=200 の件数 = %v, want 2", counts["200"])
	}
	if counts["404"] != 1 {
		t.Errorf("status_code=404 の件数 = %v, want 1", counts["404"])
	}
}

func TestRecordLogin_IncrementsCounterByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(true)
	c.RecordLogin(false)

	counts := labeledCounterValues(t, reg, "blogman_logins_total", "result")
	if counts["success"] != 2 {
		t.Errorf("result=success の件数 = %v, want 2", counts["success"])
	}
	if counts["failure"] != 1 {
		t.Errorf("result=failure の件数 = %v, want 1", counts["failure"])
	}
}

func TestDomainCounters_Increment(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordPostCreated()
	c.RecordPostCreated()
	c.RecordPostDeleted()
	c.RecordCommentCreated()

	if got := counterValue(t, reg, "blogman_registrations_total"); got != 1 {
		t.Errorf("registrations_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "blogman_posts_created_total"); got != 2 {
		t.Errorf("posts_created_total = %v, want 2", got)
	}
	if got := counterValue(t, reg, "blogman_posts_deleted_total"); got != 1 {
		t.Errorf("posts_deleted_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "blogman_comments_created_total"); got != 1 {
		t.Errorf("comments_created_total = %v, want 1", got)
	}
}

func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(10 * time.Millisecond)
	c.RecordRequestLatency(20 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "blogman_request_latency_seconds" {
			continue
		}
		if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
			t.Errorf("sample count = %d, want 2", count)
		}
		return
	}
	t.Error("blogman_request_latency_seconds metric not found")
}

func TestHandler_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPostCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "blogman_posts_created_total 1") {
		t.Errorf("スクレイプ出力に記録値が含まれない:\n%s", body)
	}
}

func TestHTTPMiddleware_RecordsStatusAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := NewHTTPMiddleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	counts := labeledCounterValues(t, reg, "blogman_http_status_total", "status_code")
	if counts["404"] != 1 {
		t.Errorf("status_code=404 の件数 = %v, want 1", counts["404"])
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "blogman_request_latency_seconds" {
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("latency sample count = %d, want 1", count)
			}
		}
	}
}

func TestHTTPMiddleware_ImplicitOKOnWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := NewHTTPMiddleware(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WriteHeaderを呼ばずに本文のみ書き込む
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	counts := labeledCounterValues(t, reg, "blogman_http_status_total", "status_code")
	if counts["200"] != 1 {
		t.Errorf("status_code=200 の件数 = %v, want 1", counts["200"])
	}
}
