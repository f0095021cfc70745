package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"ytscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckYouTube(t *testing.T) {
	tests := []struct {
		name   string
		status int
		pass   bool
		detail string
	}{
		{name: "ok", status: http.StatusOK, pass: true, detail: "Reachable"},
		{name: "blocked", status: http.StatusTooManyRequests, detail: "HTTP 429"},
		{name: "server error", status: http.StatusServiceUnavailable, detail: "503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != "check-agent" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			result := CheckYouTube(context.Background(), YouTubeTarget{URL: srv.URL, UserAgent: "check-agent"})
			if result.Passed != tt.pass {
				t.Fatalf("passed = %v, detail %q", result.Passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("expected %q in %q", tt.detail, result.Detail)
			}
		})
	}
}

func TestCheckYouTube_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := CheckYouTube(context.Background(), YouTubeTarget{URL: url})
	if result.Passed || !strings.Contains(result.Detail, "unreachable") {
		t.Fatalf("expected unreachable failure, got %+v", result)
	}
}

func TestCheckWindowLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytscribe.lock")
	if result := CheckWindowLock(path); !result.Passed || result.Detail != "Not running" {
		t.Fatalf("unexpected idle result %+v", result)
	}

	held := flock.New(path)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer held.Unlock()

	result := CheckWindowLock(path)
	if !result.Passed || !strings.HasPrefix(result.Detail, "Running") {
		t.Fatalf("expected running result, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg, false)
	if len(results) != 3 {
		t.Fatalf("expected 3 offline checks, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("output dir should pass: %+v", results[0])
	}
	if results[1].Passed {
		t.Fatalf("missing log dir should fail: %+v", results[1])
	}
	if RunAll(context.Background(), nil, true) != nil {
		t.Fatal("nil config should yield no results")
	}
}
