package metadata

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"mapi/internal/textutil"
)

// Media identifies the kind of a record.
type Media string

const (
	MediaMovie      Media = "movie"
	MediaTelevision Media = "television"
)

// Field names shared by every media kind.
const (
	FieldDate      = "date"
	FieldMedia     = "media"
	FieldSynopsis  = "synopsis"
	FieldTitle     = "title"
	FieldExtension = "extension"
	FieldGroup     = "group"
	FieldQuality   = "quality"
	FieldIDImdb    = "id_imdb"
	FieldYear      = "year"
)

const dateLayout = "2006-01-02"

var baseFields = []string{
	FieldDate, FieldMedia, FieldSynopsis, FieldTitle,
	FieldExtension, FieldGroup, FieldQuality,
}

// titledFields are rendered in title case; every other field is rendered
// verbatim.
var titledFields = map[string]struct{}{
	FieldTitle:    {},
	FieldSynopsis: {},
	FieldSeries:   {},
}

// Fields is the open set of named values accepted by the constructors.
type Fields map[string]any

// Metadata is the record contract shared by Movie and Television.
type Metadata interface {
	// Media returns the record's immutable media kind.
	Media() Media
	// Get returns a field value; "year" is derived from "date".
	Get(field string) (string, bool)
	// Set validates and assigns a field; empty values unset it.
	Set(field string, value any) error
	// Delete unsets a field.
	Delete(field string) error
	// Accepts reports whether the field belongs to the record's field set.
	Accepts(field string) bool
	// All yields the set fields in name order.
	All() iter.Seq2[string, string]
	// Len returns the number of set fields.
	Len() int
	// Format renders the record with template, or the media default when empty.
	Format(template string) string
	String() string
	// Filename renders the default label sanitized for file systems with the
	// extension appended.
	Filename() string
	// Key is a canonical encoding of all set fields, usable as a map key.
	Key() string
	Equal(other Metadata) bool
}

// New builds a record of the given media kind.
func New(media Media, fields Fields) (Metadata, error) {
	switch media {
	case MediaMovie:
		return NewMovie(fields)
	case MediaTelevision:
		return NewTelevision(fields)
	default:
		return nil, fieldError(FieldMedia, string(media), ErrInvalidValue)
	}
}

type record struct {
	media    Media
	accepted map[string]struct{}
	values   map[string]string
}

func newRecord(media Media, extra []string) record {
	accepted := make(map[string]struct{}, len(baseFields)+len(extra))
	for _, name := range baseFields {
		accepted[name] = struct{}{}
	}
	for _, name := range extra {
		accepted[name] = struct{}{}
	}
	return record{
		media:    media,
		accepted: accepted,
		values:   map[string]string{FieldMedia: string(media)},
	}
}

func (r *record) apply(fields Fields) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := r.Set(name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *record) Media() Media { return r.media }

func (r *record) Accepts(field string) bool {
	_, ok := r.accepted[normalizeField(field)]
	return ok
}

func (r *record) Get(field string) (string, bool) {
	field = normalizeField(field)
	if field == FieldYear {
		date, ok := r.values[FieldDate]
		if !ok || len(date) < 4 {
			return "", false
		}
		return date[:4], true
	}
	value, ok := r.values[field]
	return value, ok
}

func (r *record) Set(field string, value any) error {
	field = normalizeField(field)
	if _, ok := r.accepted[field]; !ok {
		return fieldError(field, nil, ErrUnknownField)
	}
	if field == FieldMedia {
		text, err := cast.ToStringE(value)
		if err != nil || Media(strings.ToLower(strings.TrimSpace(text))) != r.media {
			return fieldError(field, value, ErrMediaImmutable)
		}
		return nil
	}
	if isEmpty(value) {
		delete(r.values, field)
		return nil
	}

	var (
		normalized string
		err        error
	)
	switch field {
	case FieldDate:
		normalized, err = normalizeDate(value)
	case FieldSeason:
		normalized, err = normalizeNumber(value)
	case FieldEpisode:
		normalized, err = normalizeEpisode(value)
	case FieldExtension:
		normalized, err = normalizeText(value)
		if err == nil && !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
	default:
		normalized, err = normalizeText(value)
	}
	if err != nil {
		return fieldError(field, value, err)
	}
	r.values[field] = normalized
	return nil
}

func (r *record) Delete(field string) error {
	field = normalizeField(field)
	if _, ok := r.accepted[field]; !ok {
		return fieldError(field, nil, ErrUnknownField)
	}
	if field == FieldMedia {
		return fieldError(field, nil, ErrMediaImmutable)
	}
	delete(r.values, field)
	return nil
}

func (r *record) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range r.names() {
			if !yield(name, r.values[name]) {
				return
			}
		}
	}
}

func (r *record) Len() int { return len(r.values) }

func (r *record) Key() string {
	var b strings.Builder
	for _, name := range r.names() {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(r.values[name]))
		b.WriteByte(';')
	}
	return b.String()
}

func (r *record) Equal(other Metadata) bool {
	if other == nil {
		return false
	}
	return r.Key() == other.Key()
}

func (r *record) names() []string {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *record) filename(label string) string {
	name := textutil.SanitizeFileName(label)
	if ext, ok := r.values[FieldExtension]; ok {
		name += ext
	}
	return name
}

func normalizeField(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func normalizeText(value any) (string, error) {
	if stringer, ok := value.(fmt.Stringer); ok {
		return strings.TrimSpace(stringer.String()), nil
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return "", ErrInvalidValue
	}
	return strings.TrimSpace(text), nil
}

func normalizeDate(value any) (string, error) {
	if t, ok := value.(time.Time); ok {
		return t.Format(dateLayout), nil
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return "", ErrInvalidDate
	}
	text = strings.TrimSpace(text)
	if _, err := time.Parse(dateLayout, text); err != nil {
		return "", ErrInvalidDate
	}
	return text, nil
}

func normalizeNumber(value any) (string, error) {
	n, err := toInt(value)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

// normalizeEpisode accepts a single episode or a multi-episode list, keeping
// the lowest number.
func normalizeEpisode(value any) (string, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return normalizeNumber(value)
	}
	numbers := make([]int, 0, rv.Len())
	for i := range rv.Len() {
		n, err := toInt(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		numbers = append(numbers, n)
	}
	return strconv.Itoa(slices.Min(numbers)), nil
}

func toInt(value any) (int, error) {
	var (
		n   int
		err error
	)
	if s, ok := value.(string); ok {
		n, err = strconv.Atoi(strings.TrimSpace(s))
	} else {
		n, err = cast.ToIntE(value)
	}
	if err != nil || n < 0 {
		return 0, ErrInvalidValue
	}
	return n, nil
}
