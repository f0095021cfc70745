package youtube

import (
	"fmt"
	"strings"
)

// Entry is one caption line.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is a downloaded caption track.
type Transcript struct {
	VideoID      string
	Language     string
	LanguageCode string
	IsGenerated  bool
	Entries      []Entry
}

// Text joins the entry texts with newlines.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	lines := make([]string, 0, len(t.Entries))
	for _, entry := range t.Entries {
		lines = append(lines, entry.Text)
	}
	return strings.Join(lines, "\n")
}

// Track is a caption track offered by a video.
type Track struct {
	VideoID        string
	Language       string
	LanguageCode   string
	IsGenerated    bool
	IsTranslatable bool
	BaseURL        string

	translations []TranslationLanguage
}

// Label renders the track the way the window lists it.
func (t Track) Label() string {
	kind := "manual"
	if t.IsGenerated {
		kind = "auto-generated"
	}
	return fmt.Sprintf("%s (%s) [%s]", t.Language, t.LanguageCode, kind)
}

// TranslationLanguage is a language YouTube can machine-translate a track into.
type TranslationLanguage struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
}

// TrackList holds every caption track of a video.
type TrackList struct {
	VideoID              string
	Tracks               []Track
	TranslationLanguages []TranslationLanguage
}

// Find returns the first track matching codes in order. For each code a
// manually created track wins over an auto-generated one.
func (l *TrackList) Find(codes ...string) (Track, error) {
	for _, code := range codes {
		var generated *Track
		for i := range l.Tracks {
			track := &l.Tracks[i]
			if !strings.EqualFold(track.LanguageCode, code) {
				continue
			}
			if !track.IsGenerated {
				return *track, nil
			}
			if generated == nil {
				generated = track
			}
		}
		if generated != nil {
			return *generated, nil
		}
	}
	available := make([]string, 0, len(l.Tracks))
	for _, track := range l.Tracks {
		available = append(available, track.LanguageCode)
	}
	return Track{}, newError(KindNoTranscriptFound, l.VideoID,
		fmt.Sprintf("requested %s; available %s", strings.Join(codes, ", "), strings.Join(available, ", ")))
}

// Manual returns the manually created tracks.
func (l *TrackList) Manual() []Track {
	return l.filter(false)
}

// Generated returns the auto-generated tracks.
func (l *TrackList) Generated() []Track {
	return l.filter(true)
}

func (l *TrackList) filter(generated bool) []Track {
	var out []Track
	for _, track := range l.Tracks {
		if track.IsGenerated == generated {
			out = append(out, track)
		}
	}
	return out
}
