package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapi/internal/metadata"
	"mapi/internal/provider"
)

func TestYearExpand(t *testing.T) {
	tests := []struct {
		in       string
		from, to int
	}{
		{"", 1900, 2099},
		{"2000", 2000, 2000},
		{"1990-1999", 1990, 1999},
		{"1990 - 1999", 1990, 1999},
		{"-1999", 1900, 1999},
		{"1990-", 1990, 2099},
		{"1999-1990", 1990, 1999},
		{"abc", 1900, 2099},
		{"1850", 1900, 2099},
	}
	for _, tt := range tests {
		from, to := provider.YearExpand(tt.in)
		assert.Equal(t, tt.from, from, "from for %q", tt.in)
		assert.Equal(t, tt.to, to, "to for %q", tt.in)
	}
}

func movieInYear(t *testing.T, title, year string) metadata.Metadata {
	t.Helper()
	m, err := metadata.NewMovie(metadata.Fields{
		metadata.FieldTitle: title,
		metadata.FieldDate:  year + "-01-01",
	})
	require.NoError(t, err)
	return m
}

func TestFilterMetaYearWindow(t *testing.T) {
	var records []metadata.Metadata
	for _, year := range []string{"1998", "1999", "2000", "2001", "2002"} {
		records = append(records, movieInYear(t, "Movie", year))
	}

	filtered := provider.FilterMeta(records, 0, 2000, 1)

	var years []string
	for _, m := range filtered {
		year, _ := m.Get(metadata.FieldYear)
		years = append(years, year)
	}
	assert.Equal(t, []string{"2000", "1999", "2001"}, years)
}

func TestFilterMetaDedupesAndTruncates(t *testing.T) {
	a := movieInYear(t, "Saw", "2004")
	b := movieInYear(t, "Saw", "2004")
	c := movieInYear(t, "Saw II", "2005")
	d := movieInYear(t, "Saw III", "2006")

	filtered := provider.FilterMeta([]metadata.Metadata{a, b, c, d}, 0, 0, 0)
	require.Len(t, filtered, 3)
	assert.True(t, filtered[0].Equal(a))

	assert.Len(t, provider.FilterMeta([]metadata.Metadata{a, b, c, d}, 2, 0, 0), 2)
}
