package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeYouTube struct {
	server      *httptest.Server
	timedtext   []byte
	playerCalls atomic.Int32
	lastTlang   atomic.Value
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	t.Helper()
	data, err := os.ReadFile("testdata/timedtext.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	fake := &fakeYouTube{timedtext: data}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", fake.handleWatch)
	mux.HandleFunc("/youtubei/v1/player", fake.handlePlayer)
	mux.HandleFunc("/api/timedtext", fake.handleTimedText)
	mux.HandleFunc("/oembed", fake.handleOEmbed)
	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeYouTube) client(t *testing.T, preserve bool) *Client {
	t.Helper()
	client, err := New(Config{
		HTTPClient:         f.server.Client(),
		WatchURL:           f.server.URL + "/watch",
		InnertubeURL:       f.server.URL + "/youtubei/v1/player",
		OEmbedURL:          f.server.URL + "/oembed",
		PreserveFormatting: preserve,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func (f *fakeYouTube) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("v")
	switch id {
	case "blocked0000":
		w.WriteHeader(http.StatusTooManyRequests)
		return
	case "captcha0000":
		fmt.Fprint(w, `<html><div class="g-recaptcha"></div></html>`)
		return
	case "consent0000":
		if !strings.Contains(r.Header.Get("Cookie"), "CONSENT=YES+cb.2026") {
			fmt.Fprint(w, `<form action="https://consent.youtube.com/s"><input type="hidden" name="v" value="cb.2026"></form>`)
			return
		}
	case "fallback000":
		player := `{"playabilityStatus":{"status":"OK","reason":"a } in a string"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
			`{"baseUrl":"` + f.server.URL + `/api/timedtext?v=fallback000&lang=en","name":{"simpleText":"English"},"languageCode":"en"}]}}}`
		fmt.Fprintf(w, `<script>var ytInitialPlayerResponse = %s;var meta = {};</script>`, player)
		return
	}
	fmt.Fprint(w, `<html><script>ytcfg.set({"INNERTUBE_API_KEY": "fake-key_123"});</script></html>`)
}

func (f *fakeYouTube) handlePlayer(w http.ResponseWriter, r *http.Request) {
	f.playerCalls.Add(1)
	if r.Method != http.MethodPost || r.URL.Query().Get("key") != "fake-key_123" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Context.Client.ClientName != "ANDROID" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	base := f.server.URL + "/api/timedtext?v=" + req.VideoID
	var resp string
	switch req.VideoID {
	case "disabled000":
		resp = `{"playabilityStatus":{"status":"OK"}}`
	case "unnamed0000":
		resp = `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
			`{"baseUrl":"` + base + `&lang=de","languageCode":"de","isTranslatable":true},` +
			`{"baseUrl":"` + base + `&lang=en&kind=asr","languageCode":"en","kind":"asr"}],` +
			`"translationLanguages":[{"languageCode":"fr"}]}}}`
	case "notracks000":
		resp = `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[]}}}`
	case "unavailabl1":
		resp = `{"playabilityStatus":{"status":"ERROR","reason":"This video is unavailable"}}`
	case "agecheck000":
		resp = `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"}}`
	case "botcheck000":
		resp = `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm you're not a bot"}}`
	case "private0000":
		resp = `{"playabilityStatus":{"status":"UNPLAYABLE","reason":"Video unavailable","errorScreen":{"playerErrorMessageRenderer":{"subreason":{"runs":[{"text":"This video is private"}]}}}}}`
	case "potoken0000":
		resp = `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
			`{"baseUrl":"` + base + `&lang=en&exp=xpe","name":{"simpleText":"English"},"languageCode":"en"}]}}}`
	default:
		resp = `{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
			`{"baseUrl":"` + base + `&lang=en&fmt=srv3","name":{"runs":[{"text":"English"}]},"languageCode":"en","isTranslatable":true},` +
			`{"baseUrl":"` + base + `&lang=en&kind=asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr","isTranslatable":true},` +
			`{"baseUrl":"` + base + `&lang=de&kind=asr","name":{"simpleText":"German (auto-generated)"},"languageCode":"de","kind":"asr"}],` +
			`"translationLanguages":[{"languageCode":"fr","languageName":{"simpleText":"French"}},{"languageCode":"es","languageName":{"runs":[{"text":"Spanish"}]}}]}}}`
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, resp)
}

func (f *fakeYouTube) handleTimedText(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("fmt") != "" {
		http.Error(w, "srv3 not supported", http.StatusBadRequest)
		return
	}
	f.lastTlang.Store(r.URL.Query().Get("tlang"))
	w.Header().Set("Content-Type", "text/xml")
	_, _ = w.Write(f.timedtext)
}

func (f *fakeYouTube) handleOEmbed(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if !strings.HasSuffix(target, "v=dQw4w9WgXcQ") {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	_, _ = io.WriteString(w, `{"title":"Never Gonna Give You Up","author_name":"Rick Astley"}`)
}

func TestListTranscripts(t *testing.T) {
	fake := newFakeYouTube(t)
	list, err := fake.client(t, false).ListTranscripts(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if len(list.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(list.Tracks))
	}
	first := list.Tracks[0]
	if first.Language != "English" || first.IsGenerated || !first.IsTranslatable {
		t.Fatalf("unexpected first track %+v", first)
	}
	if strings.Contains(first.BaseURL, "fmt=srv3") {
		t.Fatalf("srv3 format should be stripped: %s", first.BaseURL)
	}
	if got := len(list.Generated()); got != 2 {
		t.Fatalf("expected 2 generated tracks, got %d", got)
	}
	if got := len(list.Manual()); got != 1 {
		t.Fatalf("expected 1 manual track, got %d", got)
	}
	if len(list.TranslationLanguages) != 2 || list.TranslationLanguages[1].Language != "Spanish" {
		t.Fatalf("unexpected translation languages %+v", list.TranslationLanguages)
	}
}

func TestListTranscriptsNamesUnnamedTracks(t *testing.T) {
	fake := newFakeYouTube(t)
	list, err := fake.client(t, false).ListTranscripts(context.Background(), "unnamed0000")
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if len(list.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(list.Tracks))
	}
	if got := list.Tracks[0].Language; got != "German" {
		t.Fatalf("manual track name = %q, want German", got)
	}
	if got := list.Tracks[1].Label(); got != "English (auto-generated) (en) [auto-generated]" {
		t.Fatalf("generated track label = %q", got)
	}
	if got := list.TranslationLanguages[0].Language; got != "French" {
		t.Fatalf("translation language name = %q, want French", got)
	}
}

func TestGetTranscriptPrefersManualTrack(t *testing.T) {
	fake := newFakeYouTube(t)
	transcript, err := fake.client(t, false).GetTranscript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if transcript.IsGenerated || transcript.LanguageCode != "en" {
		t.Fatalf("expected manual english track, got %+v", transcript)
	}
	want := []Entry{
		{Text: "Hey there", Start: 0, Duration: 1.54},
		{Text: "how are you doing?", Start: 1.54, Duration: 4.16},
		{Text: "it's great & fine", Start: 6.0, Duration: 2.5},
	}
	if len(transcript.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), transcript.Entries)
	}
	for i := range want {
		if transcript.Entries[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, transcript.Entries[i], want[i])
		}
	}
	if transcript.Text() != "Hey there\nhow are you doing?\nit's great & fine" {
		t.Fatalf("unexpected text %q", transcript.Text())
	}
}

func TestFetchTranscriptPreservesFormatting(t *testing.T) {
	fake := newFakeYouTube(t)
	client := fake.client(t, true)
	transcript, err := client.GetTranscript(context.Background(), "dQw4w9WgXcQ", "de")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if !transcript.IsGenerated || transcript.LanguageCode != "de" {
		t.Fatalf("expected generated german track, got %+v", transcript)
	}
	if transcript.Entries[1].Text != "how are <i>you</i> doing?" {
		t.Fatalf("expected <i> to survive, got %q", transcript.Entries[1].Text)
	}
	if transcript.Entries[2].Text != "it's great & fine" {
		t.Fatalf("non-formatting tags should still be stripped, got %q", transcript.Entries[2].Text)
	}
}

func TestFetchTranscriptTranslation(t *testing.T) {
	fake := newFakeYouTube(t)
	client := fake.client(t, false)
	ctx := context.Background()
	list, err := client.ListTranscripts(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}

	transcript, err := client.FetchTranscript(ctx, list.Tracks[0], "fr")
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if transcript.LanguageCode != "fr" || transcript.Language != "French" {
		t.Fatalf("unexpected translated metadata %+v", transcript)
	}
	if got, _ := fake.lastTlang.Load().(string); got != "fr" {
		t.Fatalf("expected tlang=fr, got %q", got)
	}

	if _, err := client.FetchTranscript(ctx, list.Tracks[0], "zz"); KindOf(err) != KindTranslationUnavailable {
		t.Fatalf("expected translation_unavailable, got %v", err)
	}
	if _, err := client.FetchTranscript(ctx, list.Tracks[2], "fr"); KindOf(err) != KindNotTranslatable {
		t.Fatalf("expected not_translatable, got %v", err)
	}
}

func TestListTranscriptsFailureKinds(t *testing.T) {
	fake := newFakeYouTube(t)
	client := fake.client(t, false)

	tests := []struct {
		videoID string
		want    Kind
		detail  string
	}{
		{videoID: "disabled000", want: KindTranscriptsDisabled},
		{videoID: "notracks000", want: KindTranscriptsDisabled},
		{videoID: "unavailabl1", want: KindVideoUnavailable},
		{videoID: "agecheck000", want: KindAgeRestricted},
		{videoID: "botcheck000", want: KindRequestBlocked},
		{videoID: "blocked0000", want: KindRequestBlocked},
		{videoID: "captcha0000", want: KindRequestBlocked},
		{videoID: "private0000", want: KindVideoUnplayable, detail: "This video is private"},
	}
	for _, tt := range tests {
		t.Run(tt.videoID, func(t *testing.T) {
			_, err := client.ListTranscripts(context.Background(), tt.videoID)
			if err == nil {
				t.Fatal("expected error")
			}
			var ytErr *Error
			if !errors.As(err, &ytErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if ytErr.Kind != tt.want {
				t.Fatalf("kind = %s, want %s (%v)", ytErr.Kind, tt.want, err)
			}
			if ytErr.VideoID != tt.videoID {
				t.Fatalf("video id = %q", ytErr.VideoID)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Fatalf("expected %q in %q", tt.detail, err.Error())
			}
		})
	}
}

func TestListTranscriptsAcceptsConsent(t *testing.T) {
	fake := newFakeYouTube(t)
	list, err := fake.client(t, false).ListTranscripts(context.Background(), "consent0000")
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if len(list.Tracks) == 0 {
		t.Fatal("expected tracks after consent retry")
	}
}

func TestListTranscriptsFallsBackToPagePlayerResponse(t *testing.T) {
	fake := newFakeYouTube(t)
	list, err := fake.client(t, false).ListTranscripts(context.Background(), "fallback000")
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if fake.playerCalls.Load() != 0 {
		t.Fatalf("player endpoint should not be called without an API key")
	}
	if len(list.Tracks) != 1 || list.Tracks[0].Language != "English" {
		t.Fatalf("unexpected tracks %+v", list.Tracks)
	}
}

func TestFetchTranscriptRequiresPoToken(t *testing.T) {
	fake := newFakeYouTube(t)
	_, err := fake.client(t, false).GetTranscript(context.Background(), "potoken0000")
	if KindOf(err) != KindPoTokenRequired {
		t.Fatalf("expected po_token_required, got %v", err)
	}
}

func TestGetTranscriptNoMatchingLanguage(t *testing.T) {
	fake := newFakeYouTube(t)
	_, err := fake.client(t, false).GetTranscript(context.Background(), "dQw4w9WgXcQ", "ja", "ko")
	if KindOf(err) != KindNoTranscriptFound {
		t.Fatalf("expected no_transcript_found, got %v", err)
	}
	if !strings.Contains(err.Error(), "ja, ko") {
		t.Fatalf("expected requested codes in message: %v", err)
	}
}

func TestVideoTitle(t *testing.T) {
	fake := newFakeYouTube(t)
	client := fake.client(t, false)
	title, err := client.VideoTitle(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("VideoTitle: %v", err)
	}
	if title != "Never Gonna Give You Up" {
		t.Fatalf("unexpected title %q", title)
	}
	if _, err := client.VideoTitle(context.Background(), "unavailabl1"); err == nil {
		t.Fatal("expected error for unknown video")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1};rest`, want: `{"a":1}`},
		{in: `{"a":"}{"};`, want: `{"a":"}{"}`},
		{in: `{"a":"\"}"}x`, want: `{"a":"\"}"}`},
		{in: `{"a":"\\"}x`, want: `{"a":"\\"}`},
		{in: `{"a":{"b":2}}}`, want: `{"a":{"b":2}}`},
		{in: `[1]`, want: ""},
		{in: `{"open":`, want: ""},
	}
	for _, tt := range tests {
		if got := string(extractJSON([]byte(tt.in))); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientPacingHonorsContext(t *testing.T) {
	fake := newFakeYouTube(t)
	client, err := New(Config{
		HTTPClient:        fake.server.Client(),
		WatchURL:          fake.server.URL + "/watch",
		InnertubeURL:      fake.server.URL + "/youtubei/v1/player",
		OEmbedURL:         fake.server.URL + "/oembed",
		RequestsPerSecond: 1000,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.ListTranscripts(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("paced ListTranscripts: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListTranscripts(ctx, "dQw4w9WgXcQ"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
