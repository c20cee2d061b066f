package metadata

import (
	"fmt"
	"regexp"
	"strconv"
)

// Television-only field names.
const (
	FieldEpisode = "episode"
	FieldIDTvdb  = "id_tvdb"
	FieldSeason  = "season"
	FieldSeries  = "series"
)

// DefaultTelevisionTemplate renders "Series - 05x03 - Title".
const DefaultTelevisionTemplate = "{series} - {season:02}x{episode:02} - {title}"

var (
	crossEpisodePattern  = regexp.MustCompile(`\b(\d{1,3})x(\d{1,3})\b`)
	seasonEpisodePattern = regexp.MustCompile(`\bS(\d{1,3})E(\d{1,3})\b`)
)

// Television is an episode record.
type Television struct {
	record
}

// NewTelevision builds an episode record, failing on unknown fields or
// invalid values.
func NewTelevision(fields Fields) (*Television, error) {
	t := &Television{record: newRecord(MediaTelevision, []string{
		FieldEpisode, FieldIDImdb, FieldIDTvdb, FieldSeason, FieldSeries,
	})}
	if err := t.apply(fields); err != nil {
		return nil, err
	}
	return t, nil
}

// Season returns the season number when set.
func (t *Television) Season() (int, bool) { return t.number(FieldSeason) }

// Episode returns the episode number when set.
func (t *Television) Episode() (int, bool) { return t.number(FieldEpisode) }

func (t *Television) number(field string) (int, bool) {
	value, ok := t.values[field]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	return n, err == nil
}

// Format renders the record and pads bare season and episode numbers in
// "5x3" and "S5E3" forms to two digits.
func (t *Television) Format(template string) string {
	if template == "" {
		template = DefaultTelevisionTemplate
	}
	return padEpisodes(t.render(template))
}

func (t *Television) String() string { return t.Format("") }

func (t *Television) Filename() string { return t.filename(t.String()) }

func padEpisodes(label string) string {
	label = crossEpisodePattern.ReplaceAllStringFunc(label, func(match string) string {
		parts := crossEpisodePattern.FindStringSubmatch(match)
		return fmt.Sprintf("%sx%s", pad2(parts[1]), pad2(parts[2]))
	})
	return seasonEpisodePattern.ReplaceAllStringFunc(label, func(match string) string {
		parts := seasonEpisodePattern.FindStringSubmatch(match)
		return fmt.Sprintf("S%sE%s", pad2(parts[1]), pad2(parts[2]))
	})
}

func pad2(digits string) string {
	if len(digits) == 1 {
		return "0" + digits
	}
	return digits
}
