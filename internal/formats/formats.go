package formats

import (
	"fmt"
	"strings"

	"ytscribe/internal/youtube"
)

// Format is a named transcript serializer.
type Format struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	Description string `json:"description"`

	render func([]youtube.Entry) (string, error)
	// aliases are extra lookup names beyond Key and Name.
	aliases []string
}

// Render serializes the transcript's entries.
func (f Format) Render(t *youtube.Transcript) (string, error) {
	if f.render == nil {
		return "", fmt.Errorf("formats: %q has no renderer", f.Key)
	}
	var entries []youtube.Entry
	if t != nil {
		entries = t.Entries
	}
	return f.render(entries)
}

var registry = []Format{
	{
		Key:         "json",
		Name:        "JSON",
		Extension:   "json",
		Description: "List of {text, start, duration} objects, for scripts and other programs.",
		render:      renderJSON,
	},
	{
		Key:         "pretty",
		Name:        "Pretty Print",
		Extension:   "txt",
		Description: "Readable dump of every caption with its timing, one per line.",
		render:      renderPretty,
		aliases:     []string{"pretty print"},
	},
	{
		Key:         "text",
		Name:        "Text",
		Extension:   "txt",
		Description: "Caption text only, one line per caption.",
		render:      renderText,
		aliases:     []string{"txt"},
	},
	{
		Key:         "webvtt",
		Name:        "WebVTT",
		Extension:   "vtt",
		Description: "Web Video Text Tracks subtitles for HTML5 players.",
		render:      renderWebVTT,
		aliases:     []string{"vtt"},
	},
	{
		Key:         "srt",
		Name:        "SRT",
		Extension:   "srt",
		Description: "SubRip subtitles understood by most video players.",
		render:      renderSRT,
	},
}

// All returns the formats in display order.
func All() []Format {
	return append([]Format(nil), registry...)
}

// Lookup finds a format by key, display name, or alias, ignoring case.
func Lookup(name string) (Format, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, f := range registry {
		if needle == f.Key || needle == strings.ToLower(f.Name) {
			return f, nil
		}
		for _, alias := range f.aliases {
			if needle == alias {
				return f, nil
			}
		}
	}
	return Format{}, fmt.Errorf("formats: unknown format %q (use json, pretty, text, webvtt, or srt)", name)
}

// Names lists the display names in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, f := range registry {
		names = append(names, f.Name)
	}
	return names
}
