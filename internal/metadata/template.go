package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mapi/internal/textutil"
)

var fieldRefPattern = regexp.MustCompile(`\{(\w+)(?::(0?)(\d+))?\}`)

// render substitutes field references and drops optional <...> segments
// whose fields are not all set, then tidies separators.
func (r *record) render(template string) string {
	var out strings.Builder
	for rest := template; rest != ""; {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			text, _ := r.substitute(rest)
			out.WriteString(text)
			break
		}
		text, _ := r.substitute(rest[:open])
		out.WriteString(text)

		closing := strings.IndexByte(rest[open+1:], '>')
		if closing < 0 {
			text, _ := r.substitute(rest[open:])
			out.WriteString(text)
			break
		}
		segment := rest[open+1 : open+1+closing]
		if text, complete := r.substitute(segment); complete {
			out.WriteString(text)
		}
		rest = rest[open+closing+2:]
	}
	return textutil.CollapseSeparators(out.String())
}

// substitute replaces every field reference in text. complete reports
// whether all referenced fields were set.
func (r *record) substitute(text string) (string, bool) {
	complete := true
	result := fieldRefPattern.ReplaceAllStringFunc(text, func(ref string) string {
		parts := fieldRefPattern.FindStringSubmatch(ref)
		value, ok := r.renderValue(parts[1])
		if !ok {
			complete = false
			return ""
		}
		return applyWidth(value, parts[2] == "0", parts[3])
	})
	return result, complete
}

func (r *record) renderValue(field string) (string, bool) {
	field = normalizeField(field)
	value, ok := r.Get(field)
	if !ok {
		return "", false
	}
	if _, titled := titledFields[field]; titled {
		return textutil.TitleCase(value), true
	}
	return value, true
}

func applyWidth(value string, zero bool, width string) string {
	if width == "" {
		return value
	}
	w, err := strconv.Atoi(width)
	if err != nil || w <= 0 {
		return value
	}
	if n, err := strconv.Atoi(value); err == nil {
		if zero {
			return fmt.Sprintf("%0*d", w, n)
		}
		return fmt.Sprintf("%*d", w, n)
	}
	return fmt.Sprintf("%-*s", w, value)
}
