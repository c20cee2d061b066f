package metadata

// Movie-only field names.
const FieldIDTmdb = "id_tmdb"

// DefaultMovieTemplate renders "Title (Year)".
const DefaultMovieTemplate = "{title} ({year})"

// Movie is a movie record.
type Movie struct {
	record
}

// NewMovie builds a movie record, failing on unknown fields or invalid values.
func NewMovie(fields Fields) (*Movie, error) {
	m := &Movie{record: newRecord(MediaMovie, []string{FieldIDImdb, FieldIDTmdb})}
	if err := m.apply(fields); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Movie) Format(template string) string {
	if template == "" {
		template = DefaultMovieTemplate
	}
	return m.render(template)
}

func (m *Movie) String() string { return m.Format("") }

func (m *Movie) Filename() string { return m.filename(m.String()) }
