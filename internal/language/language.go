package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code  string   // YouTube language code
	code3 string   // ISO 639-2 primary (3-letter)
	alt3  string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	words []string // Full word forms (e.g. "english")
}

var aliases = []entry{
	{"en", "eng", "", []string{"english"}},
	{"es", "spa", "", []string{"spanish", "espanol", "español"}},
	{"fr", "fra", "fre", []string{"french", "francais", "français"}},
	{"de", "deu", "ger", []string{"german", "deutsch"}},
	{"it", "ita", "", []string{"italian"}},
	{"pt", "por", "", []string{"portuguese"}},
	{"ja", "jpn", "", []string{"japanese"}},
	{"ko", "kor", "", []string{"korean"}},
	{"zh", "zho", "chi", []string{"chinese"}},
	{"ru", "rus", "", []string{"russian"}},
	{"ar", "ara", "", []string{"arabic"}},
	{"hi", "hin", "", []string{"hindi"}},
	{"nl", "nld", "dut", []string{"dutch"}},
	{"pl", "pol", "", []string{"polish"}},
	{"sv", "swe", "", []string{"swedish"}},
	{"da", "dan", "", []string{"danish"}},
	{"no", "nor", "", []string{"norwegian"}},
	{"fi", "fin", "", []string{"finnish"}},
	{"tr", "tur", "", []string{"turkish"}},
	{"uk", "ukr", "", []string{"ukrainian"}},
	{"iw", "heb", "", []string{"hebrew"}},
}

var byAlias map[string]string

func init() {
	byAlias = make(map[string]string, len(aliases)*3)
	for _, e := range aliases {
		byAlias[e.code3] = e.code
		if e.alt3 != "" {
			byAlias[e.alt3] = e.code
		}
		for _, w := range e.words {
			byAlias[w] = e.code
		}
	}
}

// Normalize converts a user-supplied language code or word into the
// canonical BCP 47 form YouTube uses. Unparseable input is returned trimmed
// so callers can still report it back verbatim.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if mapped, ok := byAlias[strings.ToLower(code)]; ok {
		return mapped
	}
	tag, err := xlanguage.Raw.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return code
	}
	return tag.String()
}

// NormalizeList normalizes and deduplicates a preference list, keeping order.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		code := Normalize(lang)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		normalized = append(normalized, code)
	}
	return normalized
}

// DisplayName returns an English name for a language code, falling back to
// the code itself when x/text has no name for it.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := xlanguage.Raw.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
