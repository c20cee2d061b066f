package metadata_test

import (
	"errors"
	"testing"

	"mapi/internal/metadata"
	"mapi/internal/services"
)

func newSawIII(t *testing.T) *metadata.Movie {
	t.Helper()
	movie, err := metadata.NewMovie(metadata.Fields{
		"title":    "saw iii",
		"date":     "2006-01-01",
		"synopsis": "Jigsaw kidnaps a doctor to keep him alive.",
		"id_imdb":  "tt0489270",
	})
	if err != nil {
		t.Fatalf("NewMovie returned error: %v", err)
	}
	return movie
}

func TestMovieDefaultFormat(t *testing.T) {
	movie := newSawIII(t)
	if got := movie.String(); got != "Saw III (2006)" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestMovieFormatOmitsMissingYear(t *testing.T) {
	movie := newSawIII(t)
	if err := movie.Set("date", nil); err != nil {
		t.Fatalf("clear date: %v", err)
	}
	if got := movie.String(); got != "Saw III" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestMovieCustomTemplate(t *testing.T) {
	movie := newSawIII(t)
	if got := movie.Format("TITLE:{title}"); got != "TITLE:Saw III" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := movie.Format("{title}< [{id_imdb}]>"); got != "Saw III [tt0489270]" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := movie.Format("{title}< [{quality}]>"); got != "Saw III" {
		t.Fatalf("expected optional segment to be dropped, got %q", got)
	}
}

func TestMovieTitleCaseExceptions(t *testing.T) {
	movie, err := metadata.NewMovie(metadata.Fields{"title": "a bug's life"})
	if err != nil {
		t.Fatalf("NewMovie returned error: %v", err)
	}
	if got := movie.String(); got != "A Bug's Life" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestMovieYearDerivation(t *testing.T) {
	movie := newSawIII(t)
	if year, ok := movie.Get("year"); !ok || year != "2006" {
		t.Fatalf("expected year 2006, got %q %v", year, ok)
	}
	if err := movie.Delete("date"); err != nil {
		t.Fatalf("delete date: %v", err)
	}
	if _, ok := movie.Get("year"); ok {
		t.Fatal("expected year to be absent without a date")
	}
}

func TestMovieMediaImmutable(t *testing.T) {
	movie := newSawIII(t)
	err := movie.Set("media", "television")
	if !errors.Is(err, metadata.ErrMediaImmutable) {
		t.Fatalf("expected ErrMediaImmutable, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if err := movie.Set("MEDIA", "movie"); err != nil {
		t.Fatalf("expected same media to be accepted, got %v", err)
	}
	if movie.Media() != metadata.MediaMovie {
		t.Fatalf("unexpected media %q", movie.Media())
	}
}

func TestMovieUnknownField(t *testing.T) {
	movie := newSawIII(t)
	if err := movie.Set("series", "Lost"); !errors.Is(err, metadata.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := movie.Set("year", "2006"); !errors.Is(err, metadata.ErrUnknownField) {
		t.Fatalf("expected derived year to be read-only, got %v", err)
	}
	if _, err := metadata.NewMovie(metadata.Fields{"titel": "typo"}); !errors.Is(err, metadata.ErrUnknownField) {
		t.Fatalf("expected constructor to reject unknown field, got %v", err)
	}
}

func TestMovieInvalidDate(t *testing.T) {
	for _, value := range []string{"2006", "01-01-2006", "2006-13-01"} {
		_, err := metadata.NewMovie(metadata.Fields{"title": "x", "date": value})
		if !errors.Is(err, metadata.ErrInvalidDate) {
			t.Fatalf("date %q: expected ErrInvalidDate, got %v", value, err)
		}
	}
}

func TestMovieFalsyValuesUnset(t *testing.T) {
	movie := newSawIII(t)
	before := movie.Len()
	for _, value := range []any{nil, "", "   ", []string{}} {
		if err := movie.Set("synopsis", "present"); err != nil {
			t.Fatalf("set synopsis: %v", err)
		}
		if err := movie.Set("synopsis", value); err != nil {
			t.Fatalf("set synopsis to %#v: %v", value, err)
		}
		if _, ok := movie.Get("synopsis"); ok {
			t.Fatalf("expected %#v to unset synopsis", value)
		}
		for name := range movie.All() {
			if name == "synopsis" {
				t.Fatalf("expected synopsis absent from iteration after %#v", value)
			}
		}
		if movie.Len() != before-1 {
			t.Fatalf("expected length %d, got %d", before-1, movie.Len())
		}
	}
}

func TestMovieExtensionPrefix(t *testing.T) {
	movie := newSawIII(t)
	if err := movie.Set("extension", "mkv"); err != nil {
		t.Fatalf("set extension: %v", err)
	}
	if ext, _ := movie.Get("extension"); ext != ".mkv" {
		t.Fatalf("expected .mkv, got %q", ext)
	}
	if err := movie.Set("extension", ".mp4"); err != nil {
		t.Fatalf("set extension: %v", err)
	}
	if ext, _ := movie.Get("extension"); ext != ".mp4" {
		t.Fatalf("expected .mp4, got %q", ext)
	}
	if got := movie.Filename(); got != "Saw III (2006).mp4" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestMovieCaseInsensitiveKeys(t *testing.T) {
	movie := newSawIII(t)
	if err := movie.Set("Title", "saw iv"); err != nil {
		t.Fatalf("set Title: %v", err)
	}
	if title, _ := movie.Get("TITLE"); title != "saw iv" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestMovieEqualityAndKey(t *testing.T) {
	a := newSawIII(t)
	b := newSawIII(t)
	if !a.Equal(b) || a.Key() != b.Key() {
		t.Fatal("expected identical records to be equal")
	}
	if err := b.Set("quality", "1080p"); err != nil {
		t.Fatalf("set quality: %v", err)
	}
	if a.Equal(b) {
		t.Fatal("expected records with different fields to differ")
	}
	if a.Equal(nil) {
		t.Fatal("expected nil comparison to be false")
	}
}

func TestMovieNumericIdentifiers(t *testing.T) {
	movie, err := metadata.NewMovie(metadata.Fields{"title": "Jaws", "id_tmdb": float64(578)})
	if err != nil {
		t.Fatalf("NewMovie returned error: %v", err)
	}
	if id, _ := movie.Get("id_tmdb"); id != "578" {
		t.Fatalf("expected id_tmdb 578, got %q", id)
	}
}

func TestNewRejectsUnknownMedia(t *testing.T) {
	if _, err := metadata.New("podcast", nil); !errors.Is(err, metadata.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	record, err := metadata.New(metadata.MediaMovie, metadata.Fields{"title": "Jaws"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if record.Media() != metadata.MediaMovie {
		t.Fatalf("unexpected media %q", record.Media())
	}
}
