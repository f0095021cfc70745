package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ytscribe/internal/language"
	"ytscribe/internal/logging"
)

const (
	maxPageBytes      = 6 << 20
	maxPlayerBytes    = 3 << 20
	maxTimedTextBytes = 2 << 20

	// requestBurst covers one Obtain: watch page, player, timedtext, oEmbed.
	requestBurst = 4
)

var (
	apiKeyPattern       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([A-Za-z0-9_-]+)"`)
	consentValuePattern = regexp.MustCompile(`name="v" value="(.*?)"`)
)

// Config controls how the client talks to YouTube. The URL fields exist so
// tests can point the client at a local server.
type Config struct {
	HTTPClient   *http.Client
	WatchURL     string
	InnertubeURL string
	OEmbedURL    string
	UserAgent    string
	ProxyURL     string
	Timeout      time.Duration
	// PreserveFormatting keeps inline markup such as <i> in caption text.
	PreserveFormatting bool
	// Languages is the preference order GetTranscript uses when none are given.
	Languages []string
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client lists and downloads caption tracks.
type Client struct {
	http         *http.Client
	watchURL     string
	innertubeURL string
	oembedURL    string
	userAgent    string
	preserve     bool
	languages    []string
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if strings.TrimSpace(cfg.ProxyURL) != "" {
			proxy, err := url.Parse(cfg.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("youtube: parse proxy url: %w", err)
			}
			transport.Proxy = http.ProxyURL(proxy)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), requestBurst)
	}
	return &Client{
		http:         httpClient,
		watchURL:     defaultString(cfg.WatchURL, defaultWatchURL),
		innertubeURL: defaultString(cfg.InnertubeURL, defaultInnertubeURL),
		oembedURL:    defaultString(cfg.OEmbedURL, defaultOEmbedURL),
		userAgent:    strings.TrimSpace(cfg.UserAgent),
		preserve:     cfg.PreserveFormatting,
		languages:    append([]string(nil), languages...),
		limiter:      limiter,
		logger:       logging.NewComponentLogger(cfg.Logger, "youtube"),
	}, nil
}

// ListTranscripts returns every caption track the video offers.
func (c *Client) ListTranscripts(ctx context.Context, videoID string) (*TrackList, error) {
	logger := logging.WithContext(ctx, c.logger)

	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	player, err := c.playerResponse(ctx, videoID, page)
	if err != nil {
		return nil, err
	}
	if err := checkPlayability(videoID, player.PlayabilityStatus); err != nil {
		return nil, err
	}
	if player.Captions == nil || player.Captions.Renderer == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		return nil, newError(KindTranscriptsDisabled, videoID, "")
	}

	renderer := player.Captions.Renderer
	list := &TrackList{VideoID: videoID}
	for _, lang := range renderer.TranslationLanguages {
		list.TranslationLanguages = append(list.TranslationLanguages, TranslationLanguage{
			Language:     languageName(lang.LanguageName.String(), lang.LanguageCode, false),
			LanguageCode: lang.LanguageCode,
		})
	}
	for _, caption := range renderer.CaptionTracks {
		track := Track{
			VideoID:        videoID,
			Language:       languageName(caption.Name.String(), caption.LanguageCode, caption.Kind == "asr"),
			LanguageCode:   caption.LanguageCode,
			IsGenerated:    caption.Kind == "asr",
			IsTranslatable: caption.IsTranslatable,
			BaseURL:        strings.Replace(caption.BaseURL, "&fmt=srv3", "", 1),
		}
		if track.IsTranslatable {
			track.translations = list.TranslationLanguages
		}
		list.Tracks = append(list.Tracks, track)
	}
	logger.Debug("caption tracks listed",
		logging.Int("tracks", len(list.Tracks)),
		logging.Int("translation_languages", len(list.TranslationLanguages)),
	)
	return list, nil
}

// languageName falls back to a display name for code when YouTube sends no
// name, as some embedded player responses do.
func languageName(name, code string, generated bool) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	name = language.DisplayName(code)
	if generated {
		name += " (auto-generated)"
	}
	return name
}

// FetchTranscript downloads track, machine-translated into translateTo when it
// is not empty.
func (c *Client) FetchTranscript(ctx context.Context, track Track, translateTo string) (*Transcript, error) {
	if strings.Contains(track.BaseURL, "&exp=xpe") {
		return nil, newError(KindPoTokenRequired, track.VideoID, "")
	}

	target := track.BaseURL
	name := track.Language
	languageCode := track.LanguageCode
	if translateTo = strings.TrimSpace(translateTo); translateTo != "" {
		if !track.IsTranslatable {
			return nil, newError(KindNotTranslatable, track.VideoID, track.LanguageCode)
		}
		found := false
		for _, lang := range track.translations {
			if lang.LanguageCode == translateTo {
				found = true
				name = lang.Language
				languageCode = lang.LanguageCode
				break
			}
		}
		if !found {
			return nil, newError(KindTranslationUnavailable, track.VideoID, translateTo)
		}
		target += "&tlang=" + url.QueryEscape(translateTo)
	}

	body, err := c.get(ctx, track.VideoID, target, maxTimedTextBytes, nil)
	if err != nil {
		return nil, err
	}
	entries, err := parseTimedText(body, c.preserve)
	if err != nil {
		return nil, wrapError(KindUnknown, track.VideoID, err)
	}

	logging.WithContext(ctx, c.logger).Debug("transcript downloaded",
		logging.String("language_code", languageCode),
		logging.Int("entries", len(entries)),
	)
	return &Transcript{
		VideoID:      track.VideoID,
		Language:     name,
		LanguageCode: languageCode,
		IsGenerated:  track.IsGenerated,
		Entries:      entries,
	}, nil
}

// GetTranscript lists the video's tracks and fetches the first one matching
// languages, falling back to the configured preference order.
func (c *Client) GetTranscript(ctx context.Context, videoID string, languages ...string) (*Transcript, error) {
	if len(languages) == 0 {
		languages = c.languages
	}
	list, err := c.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, err := list.Find(languages...)
	if err != nil {
		return nil, err
	}
	return c.FetchTranscript(ctx, track, "")
}

// VideoTitle looks up the video's title through oEmbed.
func (c *Client) VideoTitle(ctx context.Context, videoID string) (string, error) {
	query := url.Values{}
	query.Set("url", "http://www.youtube.com/watch?v="+videoID)
	query.Set("format", "json")
	body, err := c.get(ctx, videoID, c.oembedURL+"?"+query.Encode(), 64<<10, nil)
	if err != nil {
		return "", err
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", wrapError(KindUnknown, videoID, fmt.Errorf("decode oembed: %w", err))
	}
	if strings.TrimSpace(payload.Title) == "" {
		return "", newError(KindUnknown, videoID, "oembed response has no title")
	}
	return payload.Title, nil
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	target := c.watchURL + "?v=" + url.QueryEscape(videoID)
	headers := http.Header{"Accept-Language": {"en-US"}}

	body, err := c.get(ctx, videoID, target, maxPageBytes, headers)
	if err != nil {
		return "", err
	}
	page := string(body)
	if strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		match := consentValuePattern.FindStringSubmatch(page)
		if match == nil {
			return "", newError(KindUnknown, videoID, "failed to accept the YouTube consent page")
		}
		headers.Set("Cookie", "CONSENT=YES+"+match[1])
		if body, err = c.get(ctx, videoID, target, maxPageBytes, headers); err != nil {
			return "", err
		}
		page = string(body)
		if strings.Contains(page, `action="https://consent.youtube.com/s"`) {
			return "", newError(KindUnknown, videoID, "failed to accept the YouTube consent page")
		}
	}
	if strings.Contains(page, `class="g-recaptcha"`) {
		return "", newError(KindRequestBlocked, videoID, "captcha challenge")
	}
	return page, nil
}

func (c *Client) playerResponse(ctx context.Context, videoID, page string) (*playerResponse, error) {
	if match := apiKeyPattern.FindStringSubmatch(page); match != nil {
		return c.fetchPlayer(ctx, videoID, match[1])
	}

	idx := strings.Index(page, playerResponseMarker)
	if idx < 0 {
		return nil, newError(KindUnknown, videoID, "watch page has neither an API key nor a player response")
	}
	raw := extractJSON([]byte(page[idx+len(playerResponseMarker):]))
	if raw == nil {
		return nil, newError(KindUnknown, videoID, "unterminated player response")
	}
	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, wrapError(KindUnknown, videoID, fmt.Errorf("decode ytInitialPlayerResponse: %w", err))
	}
	return &player, nil
}

func (c *Client) fetchPlayer(ctx context.Context, videoID, apiKey string) (*playerResponse, error) {
	payload, err := json.Marshal(newPlayerRequest(videoID))
	if err != nil {
		return nil, wrapError(KindUnknown, videoID, err)
	}
	target := c.innertubeURL + "?key=" + url.QueryEscape(apiKey) + "&prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, wrapError(KindUnknown, videoID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidClientVersion)

	body, err := c.do(req, videoID, maxPlayerBytes)
	if err != nil {
		return nil, err
	}
	var player playerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, wrapError(KindUnknown, videoID, fmt.Errorf("decode player response: %w", err))
	}
	return &player, nil
}

func (c *Client) get(ctx context.Context, videoID, target string, limit int64, headers http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, wrapError(KindUnknown, videoID, err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.do(req, videoID, limit)
}

func (c *Client) do(req *http.Request, videoID string, limit int64) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, wrapError(KindUnknown, videoID, fmt.Errorf("pace request: %w", err))
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, wrapError(KindUnknown, videoID, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, newError(KindRequestBlocked, videoID, "HTTP 429")
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, newError(KindUnknown, videoID,
			fmt.Sprintf("%s %s: HTTP %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, wrapError(KindUnknown, videoID, fmt.Errorf("read %s: %w", req.URL.Path, err))
	}
	return body, nil
}

func checkPlayability(videoID string, status *playabilityStatus) error {
	if status == nil || status.Status == "" || status.Status == "OK" {
		return nil
	}
	reason := strings.TrimSpace(status.Reason)
	switch status.Status {
	case "ERROR":
		return newError(KindVideoUnavailable, videoID, reason)
	case "LOGIN_REQUIRED":
		lower := strings.ToLower(reason)
		switch {
		case strings.Contains(lower, "not a bot"):
			return newError(KindRequestBlocked, videoID, reason)
		case strings.Contains(lower, "inappropriate") || strings.Contains(lower, "your age"):
			return newError(KindAgeRestricted, videoID, reason)
		}
	}
	detail := reason
	if sub := status.subreason(); sub != "" {
		if detail != "" {
			detail += ": "
		}
		detail += sub
	}
	return newError(KindVideoUnplayable, videoID, detail)
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimRight(value, "/")
}
