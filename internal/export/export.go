package export

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxBaseRunes bounds the title-derived part of a file name.
const maxBaseRunes = 50

// unsafeChars are removed from titles before they become file names.
var unsafeChars = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// FileName builds "<title>.<ext>" with filesystem-unsafe characters removed
// and the title cut to 50 characters. The video ID stands in for a title that
// is empty after cleaning.
func FileName(title, videoID, ext string) string {
	base := truncateRunes(unsafeChars.Replace(title), maxBaseRunes)
	base = strings.TrimSpace(strings.Map(dropControl, base))
	if base == "" || base == "." || base == ".." {
		base = videoID
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func dropControl(r rune) rune {
	if r < 0x20 || r == 0x7f {
		return -1
	}
	return r
}

// Save writes content to dir/name through a temporary file and a rename, then
// verifies the bytes on disk hash to the bytes given. It returns the final path.
func Save(dir, name, content string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("export: invalid file name %q", name)
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("export: content is not valid UTF-8")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create output directory: %w", err)
	}

	target := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("export: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("export: write %s: %w", target, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("export: sync %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("export: close %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("export: chmod %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fmt.Errorf("export: rename into place: %w", err)
	}

	if err := verify(target, content); err != nil {
		return "", err
	}
	return target, nil
}

func verify(path, content string) error {
	written, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("export: read back %s: %w", path, err)
	}
	want := sha256.Sum256([]byte(content))
	got := sha256.Sum256(written)
	if !bytes.Equal(want[:], got[:]) {
		return fmt.Errorf("export: %s does not match the saved transcript (%d bytes on disk, %d expected)", path, len(written), len(content))
	}
	return nil
}
