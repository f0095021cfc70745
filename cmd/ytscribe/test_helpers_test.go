package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/retrieval"
	"ytscribe/internal/testsupport"
	"ytscribe/internal/youtube"
)

type fakeSource struct {
	mu        sync.Mutex
	listCalls int
	listErr   error
	lastTrack youtube.Track
	lastLang  string
}

func (f *fakeSource) ListTranscripts(_ context.Context, videoID string) (*youtube.TrackList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &youtube.TrackList{
		VideoID: videoID,
		Tracks: []youtube.Track{
			{VideoID: videoID, Language: "English", LanguageCode: "en", IsTranslatable: true},
			{VideoID: videoID, Language: "German (auto-generated)", LanguageCode: "de", IsGenerated: true},
		},
		TranslationLanguages: []youtube.TranslationLanguage{{Language: "French", LanguageCode: "fr"}},
	}, nil
}

func (f *fakeSource) FetchTranscript(_ context.Context, track youtube.Track, translateTo string) (*youtube.Transcript, error) {
	f.mu.Lock()
	f.lastTrack = track
	f.lastLang = translateTo
	f.mu.Unlock()
	return &youtube.Transcript{
		VideoID:      track.VideoID,
		Language:     track.Language,
		LanguageCode: track.LanguageCode,
		IsGenerated:  track.IsGenerated,
		Entries: []youtube.Entry{
			{Text: "first line", Start: 0, Duration: 1.5},
			{Text: "second line", Start: 1.5, Duration: 2},
		},
	}, nil
}

func (f *fakeSource) VideoTitle(context.Context, string) (string, error) {
	return "Test: Video", nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type cliTestEnv struct {
	configPath string
	outputDir  string
	logDir     string
	source     *fakeSource
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_STATE_HOME", "")

	cfg := testsupport.NewConfig(t)
	env := &cliTestEnv{
		configPath: testsupport.WriteConfig(t, cfg),
		outputDir:  cfg.Paths.OutputDir,
		logDir:     cfg.Paths.LogDir,
		source:     &fakeSource{},
	}

	previous := newTranscriptSource
	newTranscriptSource = func(*config.Config, *slog.Logger) (retrieval.Source, error) {
		return env.source, nil
	}
	t.Cleanup(func() { newTranscriptSource = previous })
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	full := append([]string{}, args...)
	if configPath != "" {
		full = append(full, "--config", configPath)
	}
	cmd.SetArgs(full)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}
