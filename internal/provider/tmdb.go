package provider

import (
	"context"
	"errors"
	"iter"

	"mapi/internal/endpoints"
	"mapi/internal/metadata"
	"mapi/internal/services"
)

// tmdbPageMax bounds title searches; TMDb pages hold 20 results.
const tmdbPageMax = 5

// TMDb searches movies on The Movie Database.
type TMDb struct {
	base
}

var _ Provider = (*TMDb)(nil)

// NewTMDb validates credentials and returns a TMDb provider.
func NewTMDb(opts Options) (*TMDb, error) {
	b, err := newBase("tmdb", "TMDb", opts)
	if err != nil {
		return nil, err
	}
	return &TMDb{base: b}, nil
}

// Media reports that TMDb yields movie records.
func (p *TMDb) Media() metadata.Media { return metadata.MediaMovie }

// Search looks movies up by TMDb id, IMDb id or title and optional year.
func (p *TMDb) Search(ctx context.Context, c Criteria) iter.Seq2[metadata.Metadata, error] {
	return p.run(ctx, func(ctx context.Context, emit emitFunc) error {
		switch {
		case c.IDTmdb != "":
			return p.searchIDTmdb(ctx, c.IDTmdb, emit)
		case c.IDImdb != "":
			return p.searchIDImdb(ctx, c.IDImdb, emit)
		case c.Title != "":
			return p.searchTitle(ctx, c.Title, yearCriteria(c), emit)
		default:
			return p.notFound("search", "no id_tmdb, id_imdb or title given")
		}
	})
}

func (p *TMDb) searchIDTmdb(ctx context.Context, id string, emit emitFunc) error {
	payload, err := endpoints.TMDbMovies(ctx, p.fetcher, p.apiKey, id, p.endpoint)
	if err != nil {
		return err
	}
	movie, err := tmdbMovie(payload)
	if err != nil {
		return services.Wrap(services.ErrNetwork, p.name, "movies", "unusable movie payload", err)
	}
	return emit(movie)
}

func (p *TMDb) searchIDImdb(ctx context.Context, id string, emit emitFunc) error {
	payload, err := endpoints.TMDbFind(ctx, p.fetcher, p.apiKey, "imdb_id", id, p.endpoint)
	if err != nil {
		return err
	}
	results := payload.List("movie_results")
	if len(results) == 0 {
		return p.notFound("find", id+" is not a movie")
	}
	movie, err := tmdbMovie(results[0])
	if err != nil {
		return services.Wrap(services.ErrNetwork, p.name, "find", "unusable movie payload", err)
	}
	if err := movie.Set(metadata.FieldIDImdb, id); err != nil {
		return services.Wrap(services.ErrProviderMisuse, p.name, "find", "invalid imdb id", err)
	}
	return emit(movie)
}

func (p *TMDb) searchTitle(ctx context.Context, title, year string, emit emitFunc) error {
	window := newYearWindow(year)
	search := endpoints.TMDbSearch{}
	if single, ok := window.single(); ok {
		search.Year = single
	}

	found := false
	for page := 1; page <= tmdbPageMax; page++ {
		if err := p.checkContext(ctx, "search movies"); err != nil {
			return err
		}
		search.Page = page
		payload, err := endpoints.TMDbSearchMovies(ctx, p.fetcher, p.apiKey, title, search, p.endpoint)
		if errors.Is(err, services.ErrNotFound) {
			break
		}
		if err != nil {
			return err
		}
		results := payload.List("results")
		p.logPage(ctx, "search movies", page, len(results))
		for _, item := range results {
			movie, err := tmdbMovie(item)
			if err != nil {
				p.logSkip(ctx, "search movies", err)
				continue
			}
			if !window.contains(movie) {
				continue
			}
			found = true
			if err := emit(movie); err != nil {
				return err
			}
		}
		if total, ok := payload.Int("total_pages"); !ok || page >= total {
			break
		}
	}
	if !found {
		return p.notFound("search movies", title)
	}
	return nil
}

// yearCriteria prefers an explicit year and falls back to the date's year.
func yearCriteria(c Criteria) string {
	if c.Year != "" {
		return c.Year
	}
	if len(c.Date) >= 4 {
		return c.Date[:4]
	}
	return ""
}
