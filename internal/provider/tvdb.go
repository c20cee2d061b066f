package provider

import (
	"context"
	"errors"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"mapi/internal/endpoints"
	"mapi/internal/logging"
	"mapi/internal/metadata"
	"mapi/internal/services"
)

const (
	// tvdbPageMax bounds episode queries; TVDb pages hold 100 results.
	tvdbPageMax = 5
	// tvdbDatePageMax bounds the full episode listing scanned by date.
	tvdbDatePageMax = 100
	// tvdbFanOut is how many series candidates a name search expands.
	tvdbFanOut = 5
)

var (
	tvdbDatePattern = regexp.MustCompile(`^(?:19|20)\d{2}(?:-(?:0[1-9]|1[012])(?:-(?:0[1-9]|[12]\d|3[01]))?)?$`)
	imdbIDPattern   = regexp.MustCompile(`^tt\d+$`)
)

// TVDb searches television episodes on TheTVDB.
type TVDb struct {
	base

	// deferred is set in cached mode: login waits for a rejected request,
	// and a rejection renews the session even when a token is held.
	deferred bool

	mu    sync.Mutex
	token string
}

var _ Provider = (*TVDb)(nil)

// NewTVDb validates credentials and returns a TVDb provider. Without caching
// it logs in right away; with caching the login waits until a request is
// rejected.
func NewTVDb(ctx context.Context, opts Options) (*TVDb, error) {
	b, err := newBase("tvdb", "TVDb", opts)
	if err != nil {
		return nil, err
	}
	p := &TVDb{base: b, deferred: opts.Cache}
	if !p.deferred {
		if err := p.login(ctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Media reports that TVDb yields television records.
func (p *TVDb) Media() metadata.Media { return metadata.MediaTelevision }

// Refresh renews the session token. It logs in when no token is held yet.
func (p *TVDb) Refresh(ctx context.Context) error {
	token := p.currentToken()
	if token == "" {
		return p.login(ctx)
	}
	fresh, err := endpoints.TVDbRefreshToken(ctx, p.fetcher, token, p.endpoint)
	if err != nil {
		return err
	}
	p.setToken(fresh)
	return nil
}

// Search looks episodes up by TVDb id, IMDb id, series and air date, or
// series with optional season and episode.
func (p *TVDb) Search(ctx context.Context, c Criteria) iter.Seq2[metadata.Metadata, error] {
	return p.run(ctx, func(ctx context.Context, emit emitFunc) error {
		if err := p.validate(c); err != nil {
			return err
		}
		err := p.dispatch(ctx, c, emit)
		if err == nil || errors.Is(err, errStop) || !errors.Is(err, services.ErrProviderMisuse) || !p.deferred {
			return err
		}
		logging.WithContext(ctx, p.logger).Info("request rejected; logging in and retrying search",
			logging.Bool("had_token", p.currentToken() != ""),
		)
		if err := p.login(ctx); err != nil {
			return err
		}
		return p.dispatch(ctx, c, emit)
	})
}

func (p *TVDb) validate(c Criteria) error {
	if c.IDTvdb != "" {
		if _, err := strconv.Atoi(strings.TrimSpace(c.IDTvdb)); err != nil {
			return p.misuse("search", "id_tvdb must be numeric")
		}
	}
	if c.IDImdb != "" && !imdbIDPattern.MatchString(strings.TrimSpace(c.IDImdb)) {
		return p.misuse("search", "invalid imdb tt-const value")
	}
	if c.Date != "" && !tvdbDatePattern.MatchString(strings.TrimSpace(c.Date)) {
		return p.misuse("search", "date format must be YYYY[-MM[-DD]]")
	}
	for name, value := range map[string]*int{"season": c.Season, "episode": c.Episode} {
		if value != nil && *value < 0 {
			return p.misuse("search", name+" must not be negative")
		}
	}
	return nil
}

func (p *TVDb) dispatch(ctx context.Context, c Criteria, emit emitFunc) error {
	switch {
	case c.IDTvdb != "":
		return p.searchIDTvdb(ctx, strings.TrimSpace(c.IDTvdb), c.Season, c.Episode, emit)
	case c.IDImdb != "":
		return p.searchIDImdb(ctx, strings.TrimSpace(c.IDImdb), c.Season, c.Episode, emit)
	case c.Series != "" && c.Date != "":
		return p.searchSeriesDate(ctx, c.Series, strings.TrimSpace(c.Date), emit)
	case c.Series != "":
		return p.searchSeries(ctx, c.Series, c.Season, c.Episode, emit)
	default:
		return p.notFound("search", "no id_tvdb, id_imdb or series given")
	}
}

func (p *TVDb) searchIDImdb(ctx context.Context, idImdb string, season, episode *int, emit emitFunc) error {
	payload, err := endpoints.TVDbSearchSeries(ctx, p.fetcher, p.currentToken(),
		endpoints.TVDbSeriesSearch{IDImdb: idImdb}, p.endpoint)
	if err != nil {
		return err
	}
	candidates := payload.List("data")
	if len(candidates) == 0 || candidates[0].String("id") == "" {
		return p.notFound("search series", idImdb)
	}
	return p.searchIDTvdb(ctx, candidates[0].String("id"), season, episode, emit)
}

func (p *TVDb) searchIDTvdb(ctx context.Context, idTvdb string, season, episode *int, emit emitFunc) error {
	series, err := endpoints.TVDbSeriesID(ctx, p.fetcher, p.currentToken(), idTvdb, p.endpoint)
	if err != nil {
		return err
	}
	seriesName := series.Map("data").String("seriesName")

	found := false
	for page := 1; page <= tvdbPageMax; page++ {
		if err := p.checkContext(ctx, "series id episodes query"); err != nil {
			return err
		}
		payload, err := endpoints.TVDbSeriesIDEpisodesQuery(ctx, p.fetcher, p.currentToken(), idTvdb,
			endpoints.TVDbEpisodeQuery{Season: season, Episode: episode, Page: page}, p.endpoint)
		if errors.Is(err, services.ErrNotFound) {
			break
		}
		if err != nil {
			return err
		}
		items := payload.List("data")
		p.logPage(ctx, "series id episodes query", page, len(items))
		for _, item := range items {
			record, err := tvdbEpisode(seriesName, idTvdb, item)
			if err != nil {
				p.logSkip(ctx, "series id episodes query", err)
				continue
			}
			found = true
			if err := emit(record); err != nil {
				return err
			}
		}
		if last, ok := payload.Map("links").Int("last"); !ok || page >= last {
			break
		}
	}
	if !found {
		return p.notFound("series id episodes query", "series "+idTvdb)
	}
	return nil
}

func (p *TVDb) searchSeries(ctx context.Context, series string, season, episode *int, emit emitFunc) error {
	candidates, err := p.candidates(ctx, series)
	if err != nil {
		return err
	}
	found := false
	counted := func(m metadata.Metadata) error {
		found = true
		return emit(m)
	}
	for _, candidate := range candidates {
		err := p.searchIDTvdb(ctx, candidate.String("id"), season, episode, counted)
		if errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
	}
	if !found {
		return p.notFound("search series", series)
	}
	return nil
}

func (p *TVDb) searchSeriesDate(ctx context.Context, series, date string, emit emitFunc) error {
	candidates, err := p.candidates(ctx, series)
	if err != nil {
		return err
	}
	exact := len(date) == len("2006-01-02")
	found := false
	for _, candidate := range candidates {
		idTvdb, seriesName := candidate.String("id"), candidate.String("seriesName")
		matched := false
		for page := 1; page <= tvdbDatePageMax; page++ {
			if err := p.checkContext(ctx, "series id episodes"); err != nil {
				return err
			}
			payload, err := endpoints.TVDbSeriesIDEpisodes(ctx, p.fetcher, p.currentToken(), idTvdb, page, p.endpoint)
			if errors.Is(err, services.ErrNotFound) {
				break
			}
			if err != nil {
				return err
			}
			items := payload.List("data")
			p.logPage(ctx, "series id episodes", page, len(items))
			for _, item := range items {
				if !strings.HasPrefix(item.String("firstAired"), date) {
					continue
				}
				record, err := tvdbEpisode(seriesName, idTvdb, item)
				if err != nil {
					p.logSkip(ctx, "series id episodes", err)
					continue
				}
				matched, found = true, true
				if err := emit(record); err != nil {
					return err
				}
			}
			if last, ok := payload.Map("links").Int("last"); !ok || page >= last {
				break
			}
			if matched && exact {
				break
			}
		}
	}
	if !found {
		return p.notFound("series id episodes", series+" aired "+date)
	}
	return nil
}

// candidates returns up to tvdbFanOut series matching a name.
func (p *TVDb) candidates(ctx context.Context, series string) ([]endpoints.Payload, error) {
	payload, err := endpoints.TVDbSearchSeries(ctx, p.fetcher, p.currentToken(),
		endpoints.TVDbSeriesSearch{Series: series}, p.endpoint)
	if err != nil {
		return nil, err
	}
	var candidates []endpoints.Payload
	for _, item := range payload.List("data") {
		if item.String("id") == "" {
			continue
		}
		candidates = append(candidates, item)
		if len(candidates) == tvdbFanOut {
			break
		}
	}
	return candidates, nil
}

func (p *TVDb) login(ctx context.Context) error {
	token, err := endpoints.TVDbLogin(ctx, p.fetcher, p.apiKey, p.endpoint)
	if err != nil {
		return err
	}
	p.setToken(token)
	return nil
}

func (p *TVDb) currentToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

func (p *TVDb) setToken(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}
