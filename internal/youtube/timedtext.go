package youtube

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// formattingTags survive markup stripping when formatting is preserved.
var formattingTags = map[string]struct{}{
	"b": {}, "i": {}, "em": {}, "strong": {}, "mark": {},
	"small": {}, "del": {}, "ins": {}, "sub": {}, "sup": {},
}

type timedText struct {
	Texts []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// parseTimedText converts a timedtext XML document into caption entries.
func parseTimedText(data []byte, preserveFormatting bool) ([]Entry, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		if strings.TrimSpace(line.Body) == "" {
			continue
		}
		start, err := parseSeconds(line.Start)
		if err != nil {
			return nil, fmt.Errorf("parse start %q: %w", line.Start, err)
		}
		dur, err := parseSeconds(line.Dur)
		if err != nil {
			return nil, fmt.Errorf("parse dur %q: %w", line.Dur, err)
		}
		entries = append(entries, Entry{
			Text:     stripMarkup(line.Body, preserveFormatting),
			Start:    start,
			Duration: dur,
		})
	}
	return entries, nil
}

func parseSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

// markupTag matches anything between angle brackets. A bare "<" with no
// closing ">" is caption text, not markup.
var markupTag = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9]*)?[^>]*>`)

// stripMarkup decodes entities and removes HTML tags from caption text. With
// preserve set, the inline formatting tags are kept without their attributes.
func stripMarkup(text string, preserve bool) string {
	text = html.UnescapeString(text)
	return markupTag.ReplaceAllStringFunc(text, func(tag string) string {
		if !preserve {
			return ""
		}
		m := markupTag.FindStringSubmatch(tag)
		name := strings.ToLower(m[2])
		if _, ok := formattingTags[name]; !ok {
			return ""
		}
		return "<" + m[1] + name + ">"
	})
}
