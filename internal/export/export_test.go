package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		ext   string
		want  string
	}{
		{name: "plain", title: "Never Gonna Give You Up", ext: "txt", want: "Never Gonna Give You Up.txt"},
		{name: "unsafe", title: `AC/DC: "Live" <2024> | Who? *`, ext: "srt", want: "ACDC Live 2024  Who.srt"},
		{name: "dot ext", title: "Talk", ext: ".vtt", want: "Talk.vtt"},
		{name: "empty title", title: "", ext: "json", want: "dQw4w9WgXcQ.json"},
		{name: "only unsafe", title: `???///`, ext: "json", want: "dQw4w9WgXcQ.json"},
		{name: "long", title: strings.Repeat("a", 80), ext: "txt", want: strings.Repeat("a", 50) + ".txt"},
		{name: "multibyte", title: strings.Repeat("é", 60), ext: "txt", want: strings.Repeat("é", 50) + ".txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.title, "dQw4w9WgXcQ", tt.ext); got != tt.want {
				t.Fatalf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	content := "Hey there\nçava? 日本語\n"

	path, err := Save(dir, "Talk.txt", content)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "Talk.txt") {
		t.Fatalf("unexpected path %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != content {
		t.Fatalf("round trip mismatch: %q vs %q", got, content)
	}

	if _, err := Save(dir, "Talk.txt", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := Save(dir, "../escape.txt", "x"); err == nil {
		t.Fatal("expected error for path separator in name")
	}
	if _, err := Save(dir, "bad.txt", string([]byte{0xff, 0xfe})); err == nil {
		t.Fatal("expected error for invalid utf-8")
	}
}
