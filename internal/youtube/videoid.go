package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]struct{}{
	"youtube.com":              {},
	"www.youtube.com":          {},
	"m.youtube.com":            {},
	"music.youtube.com":        {},
	"youtube-nocookie.com":     {},
	"www.youtube-nocookie.com": {},
}

// pathPrefixes are the URL paths whose next segment is the video ID.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// ParseVideoID extracts the 11 character video ID from a bare ID or any of the
// common YouTube URL shapes. Input that cannot name a video is reported as
// KindVideoUnavailable, matching what YouTube itself answers for an unknown ID.
func ParseVideoID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", newError(KindInvalidVideoID, "", "")
	}
	if videoIDPattern.MatchString(trimmed) {
		return trimmed, nil
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", unrecognized(trimmed)
	}
	host := strings.ToLower(parsed.Hostname())

	var id string
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id = firstSegment(strings.TrimPrefix(parsed.Path, "/"))
	default:
		if _, ok := watchHosts[host]; !ok {
			return "", unrecognized(trimmed)
		}
		if parsed.Path == "/watch" {
			id = parsed.Query().Get("v")
			break
		}
		for _, prefix := range pathPrefixes {
			if strings.HasPrefix(parsed.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(parsed.Path, prefix))
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", unrecognized(trimmed)
	}
	return id, nil
}

func firstSegment(path string) string {
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}

func unrecognized(input string) error {
	return newError(KindVideoUnavailable, "", fmt.Sprintf("%q is not a recognizable video ID or URL", input))
}
