package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T, server *httptest.Server, executor *resilience.Executor) *Client {
	t.Helper()
	client, err := New(context.Background(), Options{
		RequestsPerSecond: 100,
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(server.URL + "/"),
			option.WithHTTPClient(server.Client()),
			option.WithoutAuthentication(),
		},
		ResilienceExecutor: executor,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func writeImage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.jpg")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestDetectTextReturnsAnnotations(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "images:annotate") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"textAnnotations":[{"description":"Provider: AON\nCompany: CIE"},{"description":"Provider:"}]}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	annotations, err := client.DetectText(context.Background(), writeImage(t, "jpeg-bytes"))
	if err != nil {
		t.Fatalf("DetectText() error = %v", err)
	}
	if len(annotations) != 2 || annotations[0] != "Provider: AON\nCompany: CIE" {
		t.Fatalf("unexpected annotations %q", annotations)
	}

	requests, _ := captured["requests"].([]any)
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %v", captured)
	}
	first, _ := requests[0].(map[string]any)
	image, _ := first["image"].(map[string]any)
	if image["content"] != base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")) {
		t.Fatalf("unexpected image content %v", image["content"])
	}
	features, _ := first["features"].([]any)
	feature, _ := features[0].(map[string]any)
	if feature["type"] != textDetection {
		t.Fatalf("unexpected feature %v", feature)
	}
}

func TestDetectTextNoAnnotations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{}]}`))
	}))
	defer server.Close()

	annotations, err := newTestClient(t, server, nil).DetectText(context.Background(), writeImage(t, "x"))
	if err != nil {
		t.Fatalf("DetectText() error = %v", err)
	}
	if len(annotations) != 0 {
		t.Fatalf("expected no annotations, got %q", annotations)
	}
}

func TestDetectTextPerImageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server, nil).DetectText(context.Background(), writeImage(t, "x"))
	if err == nil || !strings.Contains(err.Error(), "Bad image data.") {
		t.Fatalf("expected per-image error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("invalid argument must not be temporary: %v", err)
	}
}

func TestDetectTextRetriesUnavailable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":{"code":503,"message":"backend unavailable"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"textAnnotations":[{"description":"ok"}]}]}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{MaxAttempts: 2, InitialBackoff: time.Millisecond}, nil)
	annotations, err := newTestClient(t, server, executor).DetectText(context.Background(), writeImage(t, "x"))
	if err != nil {
		t.Fatalf("DetectText() error = %v", err)
	}
	if calls != 2 || len(annotations) != 1 {
		t.Fatalf("expected a retry, calls=%d annotations=%q", calls, annotations)
	}
}

func TestDetectTextMarksServerErrorTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":503,"message":"backend unavailable"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, nil).DetectText(context.Background(), writeImage(t, "x"))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestDetectTextMissingImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	}))
	defer server.Close()

	if _, err := newTestClient(t, server, nil).DetectText(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatalf("expected read error")
	}
}
