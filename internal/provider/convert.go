package provider

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"mapi/internal/endpoints"
	"mapi/internal/metadata"
	"mapi/internal/services"
)

var errMalformed = errors.New("malformed result")

// isMalformed reports whether err comes from converting a single result
// rather than from the remote call.
func isMalformed(err error) bool {
	return errors.Is(err, errMalformed) || errors.Is(err, services.ErrValidation)
}

const (
	omdbMissing        = "N/A"
	omdbReleasedLayout = "02 Jan 2006"
)

var omdbYearPattern = regexp.MustCompile(`^(?:19|20)\d{2}`)

func tmdbMovie(item endpoints.Payload) (metadata.Metadata, error) {
	id, title := item.String("id"), item.String("title")
	if id == "" || title == "" {
		return nil, errMalformed
	}
	movie, err := metadata.NewMovie(metadata.Fields{
		metadata.FieldTitle:    title,
		metadata.FieldDate:     item.String("release_date"),
		metadata.FieldSynopsis: cleanSynopsis(item.String("overview")),
		metadata.FieldIDTmdb:   id,
	})
	if err != nil {
		return nil, err
	}
	return movie, nil
}

func tvdbEpisode(series, seriesID string, item endpoints.Payload) (metadata.Metadata, error) {
	season, ok := item.Int("airedSeason")
	if !ok {
		return nil, errMalformed
	}
	episode, ok := item.Int("airedEpisodeNumber")
	if !ok {
		return nil, errMalformed
	}
	if strings.TrimSpace(series) == "" {
		return nil, errMalformed
	}
	record, err := metadata.NewTelevision(metadata.Fields{
		metadata.FieldSeries:   series,
		metadata.FieldSeason:   season,
		metadata.FieldEpisode:  episode,
		metadata.FieldDate:     item.String("firstAired"),
		metadata.FieldTitle:    episodeTitle(item.String("episodeName")),
		metadata.FieldSynopsis: cleanSynopsis(item.String("overview")),
		metadata.FieldIDTvdb:   seriesID,
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func omdbMovie(item endpoints.Payload, idImdb string) (metadata.Metadata, error) {
	title := item.String("Title")
	if title == "" || title == omdbMissing {
		return nil, errMalformed
	}
	movie, err := metadata.NewMovie(metadata.Fields{
		metadata.FieldTitle:    title,
		metadata.FieldDate:     omdbDate(item),
		metadata.FieldSynopsis: cleanSynopsis(item.String("Plot")),
		metadata.FieldIDImdb:   idImdb,
	})
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// omdbDate prefers the full release date and falls back to January 1st of
// the release year.
func omdbDate(item endpoints.Payload) string {
	if released, err := time.Parse(omdbReleasedLayout, item.String("Released")); err == nil {
		return released.Format(time.DateOnly)
	}
	if year := omdbYearPattern.FindString(item.String("Year")); year != "" {
		return year + "-01-01"
	}
	return ""
}

// episodeTitle keeps the first of several ';'-joined titles.
func episodeTitle(raw string) string {
	title, _, _ := strings.Cut(raw, ";")
	return strings.TrimSpace(title)
}

// cleanSynopsis folds line breaks and runs of spaces into single spaces.
func cleanSynopsis(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")
	if text == omdbMissing {
		return ""
	}
	return text
}
