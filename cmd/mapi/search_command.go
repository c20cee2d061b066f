package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mapi"
	"mapi/internal/metadata"
	"mapi/internal/services"
)

const defaultSearchLimit = 10

type searchFlags struct {
	id       string
	idImdb   string
	title    string
	series   string
	year     string
	date     string
	season   int
	episode  int
	limit    int
	template string
	json     bool
	filename bool
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <provider>",
		Short: "Search a metadata provider",
		Long: "Search tmdb or omdb for movies and tvdb for television episodes.\n\n" +
			"Identifiers take precedence over titles: --id, then --id-imdb, then\n" +
			"--series with --date, then --title or --series.",
		Example: "  mapi search tmdb --title \"the goonies\" --year 1985\n" +
			"  mapi search tvdb --series \"adventure time\" --season 5 --episode 3",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			if !mapi.HasProvider(name) {
				return services.Wrap(services.ErrConfiguration, name, "search",
					"unknown provider; expected one of "+strings.Join(mapi.Providers(), ", "), nil)
			}
			if flags.limit < 0 {
				return services.Wrap(services.ErrProviderMisuse, name, "search", "--limit must not be negative", nil)
			}
			criteria := flags.criteria(cmd, name)

			client, err := ctx.ensureClient(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = ctx.close()
			}()
			provider, err := client.Provider(cmd.Context(), name)
			if err != nil {
				return err
			}

			var records []metadata.Metadata
			for record, err := range provider.Search(cmd.Context(), criteria) {
				if err != nil {
					return err
				}
				records = append(records, record)
				if flags.limit > 0 && len(records) >= flags.limit {
					break
				}
			}
			if len(records) == 0 {
				return services.Wrap(services.ErrNotFound, name, "search", "no results", nil)
			}

			if flags.json {
				return writeJSON(cmd, searchResultsJSON(records, flags))
			}
			out := cmd.OutOrStdout()
			if isTerminal(out) {
				fmt.Fprintln(out, renderSearchTable(records, flags))
				return nil
			}
			for _, record := range records {
				fmt.Fprintln(out, flags.label(record))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.id, "id", "", "Provider identifier (TMDb or TVDb id; IMDb id for omdb)")
	f.StringVar(&flags.idImdb, "id-imdb", "", "IMDb identifier such as tt0089218")
	f.StringVarP(&flags.title, "title", "t", "", "Movie title")
	f.StringVarP(&flags.series, "series", "s", "", "Television series name")
	f.StringVarP(&flags.year, "year", "y", "", "Release year or range such as 1980-1989")
	f.StringVar(&flags.date, "date", "", "Air date as YYYY, YYYY-MM or YYYY-MM-DD")
	f.IntVar(&flags.season, "season", 0, "Season number")
	f.IntVar(&flags.episode, "episode", 0, "Episode number")
	f.IntVarP(&flags.limit, "limit", "n", defaultSearchLimit, "Maximum number of results (0 for all)")
	f.StringVar(&flags.template, "template", "", "Output template such as \"{title}< ({year})>\"")
	f.BoolVar(&flags.json, "json", false, "Emit results as JSON")
	f.BoolVar(&flags.filename, "filename", false, "Print file system safe names")
	return cmd
}

func (f searchFlags) criteria(cmd *cobra.Command, provider string) mapi.Criteria {
	c := mapi.Criteria{
		IDImdb: strings.TrimSpace(f.idImdb),
		Title:  strings.TrimSpace(f.title),
		Series: strings.TrimSpace(f.series),
		Year:   strings.TrimSpace(f.year),
		Date:   strings.TrimSpace(f.date),
	}
	if id := strings.TrimSpace(f.id); id != "" {
		switch provider {
		case "tmdb":
			c.IDTmdb = id
		case "tvdb":
			c.IDTvdb = id
		default:
			c.IDImdb = id
		}
	}
	if cmd.Flags().Changed("season") {
		c.Season = mapi.Int(f.season)
	}
	if cmd.Flags().Changed("episode") {
		c.Episode = mapi.Int(f.episode)
	}
	return c
}

func (f searchFlags) label(record metadata.Metadata) string {
	if f.filename {
		return record.Filename()
	}
	return record.Format(f.template)
}

func renderSearchTable(records []metadata.Metadata, flags searchFlags) string {
	rows := make([][]string, 0, len(records))
	for i, record := range records {
		year, _ := record.Get(metadata.FieldYear)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			flags.label(record),
			year,
			recordID(record),
		})
	}
	return renderTable(
		[]string{"#", "Result", "Year", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// recordID picks the most specific identifier present on the record.
func recordID(record metadata.Metadata) string {
	for _, field := range []string{metadata.FieldIDTmdb, metadata.FieldIDTvdb, metadata.FieldIDImdb} {
		if value, ok := record.Get(field); ok {
			return value
		}
	}
	return ""
}

type searchResultJSON struct {
	Label  string            `json:"label"`
	Media  string            `json:"media"`
	Fields map[string]string `json:"fields"`
}

func searchResultsJSON(records []metadata.Metadata, flags searchFlags) []searchResultJSON {
	out := make([]searchResultJSON, 0, len(records))
	for _, record := range records {
		fields := make(map[string]string, record.Len())
		for name, value := range record.All() {
			fields[name] = value
		}
		out = append(out, searchResultJSON{
			Label:  flags.label(record),
			Media:  string(record.Media()),
			Fields: fields,
		})
	}
	return out
}
