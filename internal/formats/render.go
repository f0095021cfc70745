package formats

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"ytscribe/internal/youtube"
)

// renderJSON writes compact JSON with ASCII-only strings, the layout Python's
// json.dumps produces for transcript data.
func renderJSON(entries []youtube.Entry) (string, error) {
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		items = append(items, fmt.Sprintf(`{"text": %s, "start": %s, "duration": %s}`,
			jsonString(entry.Text), pyFloat(entry.Start), pyFloat(entry.Duration)))
	}
	return "[" + strings.Join(items, ", ") + "]", nil
}

func renderText(entries []youtube.Entry) (string, error) {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Text)
	}
	return strings.Join(lines, "\n"), nil
}

// prettyWidth is the column pprint wraps at.
const prettyWidth = 80

// renderPretty writes a list-of-dicts dump with sorted keys, the layout
// Python's pprint produces for transcript data. Entries that do not fit on a
// line get one key per line, and long text is split at whitespace into
// adjacent string literals.
func renderPretty(entries []youtube.Entry) (string, error) {
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		items = append(items, fmt.Sprintf("{'duration': %s, 'start': %s, 'text': %s}",
			pyFloat(entry.Duration), pyFloat(entry.Start), pyString(entry.Text)))
	}
	if flat := "[" + strings.Join(items, ", ") + "]"; runeLen(flat) <= prettyWidth {
		return flat, nil
	}

	var b strings.Builder
	b.WriteByte('[')
	for i, entry := range entries {
		if i > 0 {
			b.WriteString(",\n ")
		}
		// Items sit at column 1 and leave room for the trailing "," or "]".
		if runeLen(items[i]) <= prettyWidth-2 {
			b.WriteString(items[i])
			continue
		}
		fmt.Fprintf(&b, "{'duration': %s,\n  'start': %s,\n  'text': %s}",
			pyFloat(entry.Duration), pyFloat(entry.Start), wrapPyString(entry.Text, 10, 2))
	}
	b.WriteByte(']')
	return b.String(), nil
}

var wordParts = regexp.MustCompile(`\S*\s*`)

// wrapPyString renders s as one or more adjacent Python string literals, each
// fitting between column indent and the line width. allowance reserves room
// for closing brackets after the last literal.
func wrapPyString(s string, indent, allowance int) string {
	rep := pyString(s)
	if s == "" || runeLen(rep) <= prettyWidth-indent-allowance {
		return rep
	}

	maxWidth := prettyWidth - indent
	lines := splitLinesKeepEnds(s)
	var chunks []string
	for i, line := range lines {
		lastLine := i == len(lines)-1
		limit := maxWidth
		if lastLine {
			limit -= allowance
		}
		if lineRep := pyString(line); runeLen(lineRep) <= limit {
			chunks = append(chunks, lineRep)
			continue
		}
		parts := wordParts.FindAllString(line, -1)
		limit = maxWidth
		current := ""
		for j, part := range parts {
			if lastLine && j == len(parts)-1 {
				limit -= allowance
			}
			candidate := current + part
			if runeLen(pyString(candidate)) > limit {
				if current != "" {
					chunks = append(chunks, pyString(current))
				}
				current = part
			} else {
				current = candidate
			}
		}
		if current != "" {
			chunks = append(chunks, pyString(current))
		}
	}
	if len(chunks) == 1 {
		return rep
	}
	return strings.Join(chunks, "\n"+strings.Repeat(" ", indent))
}

// splitLinesKeepEnds splits s after each line break, keeping the breaks.
func splitLinesKeepEnds(s string) []string {
	var lines []string
	for s != "" {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		end := i + 1
		if s[i] == '\r' && end < len(s) && s[end] == '\n' {
			end++
		}
		lines = append(lines, s[:end])
		s = s[end:]
	}
	return lines
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func renderSRT(entries []youtube.Entry) (string, error) {
	cues := make([]string, 0, len(entries))
	for i, entry := range entries {
		start, end := cueBounds(entries, i)
		cues = append(cues, fmt.Sprintf("%d\n%s --> %s\n%s", i+1,
			formatTimestamp(start, ','), formatTimestamp(end, ','), entry.Text))
	}
	return strings.Join(cues, "\n\n") + "\n", nil
}

func renderWebVTT(entries []youtube.Entry) (string, error) {
	cues := make([]string, 0, len(entries))
	for i, entry := range entries {
		start, end := cueBounds(entries, i)
		cues = append(cues, fmt.Sprintf("%s --> %s\n%s",
			formatTimestamp(start, '.'), formatTimestamp(end, '.'), entry.Text))
	}
	return "WEBVTT\n\n" + strings.Join(cues, "\n\n") + "\n", nil
}

// cueBounds returns the start and end of entry i. The end is start+duration,
// pulled back to the next cue's start when the two overlap.
func cueBounds(entries []youtube.Entry, i int) (float64, float64) {
	start := entries[i].Start
	end := start + entries[i].Duration
	if i+1 < len(entries) && entries[i+1].Start < end {
		end = entries[i+1].Start
	}
	return start, end
}

// formatTimestamp renders seconds as HH:MM:SS plus sep and milliseconds.
// Milliseconds are the fraction rounded to two places and then truncated.
func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	millis := int(math.Round((seconds-float64(whole))*1000*100) / 100)
	if millis > 999 {
		millis = 999
	}
	hours := whole / 3600
	minutes := whole % 3600 / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis)
}

func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}

// jsonString quotes s as a JSON string with every non-ASCII character
// escaped, surrogate pairs included.
func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// pyString quotes s the way Python's repr does: single quotes unless the text
// contains a single quote and no double quote.
func pyString(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r) && r != ' ':
			if r <= 0xffff {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
