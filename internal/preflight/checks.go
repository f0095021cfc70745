package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"
)

const defaultCheckURL = "https://www.youtube.com/"

// YouTubeTarget configures CheckYouTube. Empty fields use the live site and a
// default client.
type YouTubeTarget struct {
	URL        string
	UserAgent  string
	ProxyURL   string
	HTTPClient *http.Client
}

// CheckYouTube verifies that YouTube answers and is not rate limiting this
// address. It uses a 5-second timeout and a single attempt.
func CheckYouTube(ctx context.Context, opts YouTubeTarget) Result {
	const name = "YouTube"

	target := strings.TrimSpace(opts.URL)
	if target == "" {
		target = defaultCheckURL
	}
	client := opts.HTTPClient
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if proxy := strings.TrimSpace(opts.ProxyURL); proxy != "" {
			parsed, err := url.Parse(proxy)
			if err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("invalid proxy url (%v)", err)}
			}
			transport.Proxy = http.ProxyURL(parsed)
		}
		client = &http.Client{Timeout: 5 * time.Second, Transport: transport}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{Name: name, Detail: "blocked (HTTP 429, requests from this IP are rate limited)"}
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWindowLock reports whether a transcript window currently holds the
// instance lock. Either answer passes; the lock is released immediately.
func CheckWindowLock(path string) Result {
	const name = "Transcript window"

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Passed: true, Detail: "Not running"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("lock check failed (%v)", err)}
	}
	if !ok {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Running (lock %s)", path)}
	}
	_ = lock.Unlock()
	return Result{Name: name, Passed: true, Detail: "Not running"}
}
