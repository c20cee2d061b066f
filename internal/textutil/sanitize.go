package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", " -",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName makes a rendered label safe to use as a file name.
// Slashes, backslashes and asterisks become dashes, colons become a spaced
// dash and other unsafe characters are removed. Separators are tidied with
// CollapseSeparators afterwards.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return CollapseSeparators(fileNameReplacer.Replace(name))
}
