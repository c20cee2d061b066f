package provider

import (
	"context"
	"errors"
	"iter"

	"mapi/internal/endpoints"
	"mapi/internal/metadata"
	"mapi/internal/services"
)

const (
	// omdbPageMax bounds title searches; OMDb pages hold 10 results.
	omdbPageMax  = 10
	omdbPageSize = 10
)

// OMDb searches movies on the Open Movie Database.
type OMDb struct {
	base
}

var _ Provider = (*OMDb)(nil)

// NewOMDb validates credentials and returns an OMDb provider.
func NewOMDb(opts Options) (*OMDb, error) {
	b, err := newBase("omdb", "OMDb", opts)
	if err != nil {
		return nil, err
	}
	return &OMDb{base: b}, nil
}

// Media reports that OMDb yields movie records.
func (p *OMDb) Media() metadata.Media { return metadata.MediaMovie }

// Search looks movies up by IMDb id or by title and optional year.
func (p *OMDb) Search(ctx context.Context, c Criteria) iter.Seq2[metadata.Metadata, error] {
	return p.run(ctx, func(ctx context.Context, emit emitFunc) error {
		switch {
		case c.IDImdb != "":
			movie, err := p.lookup(ctx, c.IDImdb)
			if err != nil {
				return err
			}
			return emit(movie)
		case c.Title != "":
			return p.searchTitle(ctx, c.Title, yearCriteria(c), emit)
		default:
			return p.notFound("search", "no id_imdb or title given")
		}
	})
}

func (p *OMDb) lookup(ctx context.Context, idImdb string) (metadata.Metadata, error) {
	payload, err := endpoints.OMDbTitle(ctx, p.fetcher, p.apiKey, endpoints.OMDbLookup{IDImdb: idImdb}, p.endpoint)
	if err != nil {
		return nil, err
	}
	movie, err := omdbMovie(payload, idImdb)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, p.name, "title", "unusable title payload", err)
	}
	return movie, nil
}

func (p *OMDb) searchTitle(ctx context.Context, title, year string, emit emitFunc) error {
	window := newYearWindow(year)
	search := endpoints.OMDbSearchOptions{Type: "movie"}
	if single, ok := window.single(); ok {
		search.Year = single
	}

	found := false
	for page := 1; page <= omdbPageMax; page++ {
		if err := p.checkContext(ctx, "search"); err != nil {
			return err
		}
		search.Page = page
		payload, err := endpoints.OMDbSearch(ctx, p.fetcher, p.apiKey, title, search, p.endpoint)
		if errors.Is(err, services.ErrNotFound) {
			break
		}
		if err != nil {
			return err
		}
		entries := payload.List("Search")
		p.logPage(ctx, "search", page, len(entries))
		for _, entry := range entries {
			year, ok := entry.Int("Year")
			id := entry.String("imdbID")
			if !ok || id == "" {
				p.logSkip(ctx, "search", errMalformed)
				continue
			}
			if !window.containsYear(year) {
				continue
			}
			movie, err := p.lookup(ctx, id)
			if errors.Is(err, services.ErrNotFound) {
				continue
			}
			if isMalformed(err) {
				p.logSkip(ctx, "title", err)
				continue
			}
			if err != nil {
				return err
			}
			found = true
			if err := emit(movie); err != nil {
				return err
			}
		}
		if total, ok := payload.Int("totalResults"); !ok || page*omdbPageSize >= total {
			break
		}
	}
	if !found {
		return p.notFound("search", title)
	}
	return nil
}
