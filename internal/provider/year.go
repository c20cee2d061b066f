package provider

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"mapi/internal/metadata"
)

const (
	yearFloor   = 1900
	yearCeiling = 2099
)

var yearRangePattern = regexp.MustCompile(`^((?:19|20)\d{2})?(\s*-\s*)?((?:19|20)\d{2})?$`)

// YearExpand parses a year or a dash-delimited year range into an inclusive
// window. Open ends and unparsable input fall back to 1900 and 2099.
func YearExpand(value string) (from, to int) {
	value = strings.TrimSpace(value)
	m := yearRangePattern.FindStringSubmatch(value)
	if value == "" || m == nil {
		return yearFloor, yearCeiling
	}
	from, to = yearFloor, yearCeiling
	if m[1] != "" {
		from, _ = strconv.Atoi(m[1])
	}
	if m[3] != "" {
		to, _ = strconv.Atoi(m[3])
	}
	if m[2] == "" {
		to = from
	}
	if from > to {
		from, to = to, from
	}
	return from, to
}

type yearWindow struct {
	from, to int
	// strict drops records without a year.
	strict bool
}

func newYearWindow(value string) yearWindow {
	from, to := YearExpand(value)
	return yearWindow{from: from, to: to, strict: strings.TrimSpace(value) != ""}
}

// single returns the year when the window covers exactly one.
func (w yearWindow) single() (int, bool) {
	return w.from, w.strict && w.from == w.to
}

func (w yearWindow) containsYear(year int) bool {
	return w.from <= year && year <= w.to
}

func (w yearWindow) contains(m metadata.Metadata) bool {
	year, ok := recordYear(m)
	if !ok {
		return !w.strict
	}
	return w.containsYear(year)
}

func recordYear(m metadata.Metadata) (int, bool) {
	raw, ok := m.Get(metadata.FieldYear)
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	return year, err == nil
}

// FilterMeta removes duplicate records and, when year is non-zero, keeps
// those within delta years of it ordered by increasing distance. A positive
// maxHits truncates the result.
func FilterMeta(records []metadata.Metadata, maxHits, year, delta int) []metadata.Metadata {
	seen := make(map[string]struct{}, len(records))
	filtered := make([]metadata.Metadata, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, record)
	}

	if year != 0 && delta >= 0 {
		distance := func(m metadata.Metadata) int {
			y, _ := recordYear(m)
			return abs(y - year)
		}
		filtered = slices.DeleteFunc(filtered, func(m metadata.Metadata) bool {
			_, ok := recordYear(m)
			return !ok || distance(m) > delta
		})
		slices.SortStableFunc(filtered, func(a, b metadata.Metadata) int {
			return cmp.Compare(distance(a), distance(b))
		})
	}

	if maxHits > 0 && len(filtered) > maxHits {
		filtered = filtered[:maxHits]
	}
	return filtered
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
