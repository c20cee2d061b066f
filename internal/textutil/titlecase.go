package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lowercaseWords stay lowercase unless they open the string.
var lowercaseWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"ces": {}, "de": {}, "des": {}, "du": {}, "for": {}, "from": {}, "in": {},
	"la": {}, "le": {}, "nor": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "un": {}, "une": {}, "with": {}, "via": {}, "h264": {}, "h265": {},
}

// uppercaseWords are always rendered fully uppercase and win over
// lowercaseWords.
var uppercaseWords = map[string]struct{}{
	"i": {}, "ii": {}, "iii": {}, "iv": {}, "v": {}, "vi": {}, "vii": {},
	"viii": {}, "ix": {}, "x": {}, "2d": {}, "3d": {}, "au": {}, "aka": {},
	"atm": {}, "bbc": {}, "bff": {}, "cia": {}, "csi": {}, "dc": {}, "doa": {},
	"espn": {}, "fbi": {}, "ira": {}, "jfk": {}, "la": {}, "lol": {}, "mlb": {},
	"mlk": {}, "mtv": {}, "nba": {}, "nfl": {}, "nhl": {}, "nsfw": {}, "nyc": {},
	"omg": {}, "pga": {}, "rsvp": {}, "tnt": {}, "tv": {}, "ufc": {}, "ufo": {},
	"uk": {}, "usa": {}, "vip": {}, "wtf": {}, "wwe": {}, "wwi": {}, "wwii": {},
	"xxx": {}, "yolo": {},
}

// paddingChars delimit words for the exception pass.
const paddingChars = "\"!$'(),-./:;<>@[]_`{}"

var (
	repeatedDashPattern  = regexp.MustCompile(`-\s*-`)
	dashEdgePattern      = regexp.MustCompile(`-\s*$|^\s*-`)
	emptyBracketPattern  = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// TitleCase capitalises each word of value and then applies the exception
// lists: articles, conjunctions and short prepositions are lowercased unless
// they open the string, while roman numerals and acronyms are uppercased.
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	titled := []rune(cases.Title(language.Und).String(strings.ToLower(value)))

	first := true
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		word := strings.ToLower(string(titled[start:end]))
		if _, ok := uppercaseWords[word]; ok {
			copy(titled[start:end], []rune(strings.ToUpper(word)))
		} else if _, ok := lowercaseWords[word]; ok && !first {
			copy(titled[start:end], []rune(word))
		}
		first = false
		start = -1
	}
	for i, r := range titled {
		if isPadding(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(titled))
	return string(titled)
}

func isPadding(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(paddingChars, r)
}

// CollapseSeparators tidies rendered labels: repeated dashes merge, leading
// and trailing dashes are removed, empty bracket pairs disappear and runs of
// whitespace collapse to a single space.
func CollapseSeparators(value string) string {
	value = emptyBracketPattern.ReplaceAllString(value, "")
	value = repeatedDashPattern.ReplaceAllString(value, "-")
	value = dashEdgePattern.ReplaceAllString(value, "")
	value = whitespaceRunPattern.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
