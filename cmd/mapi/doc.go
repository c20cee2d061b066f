// Command mapi searches movie and television metadata from the command line.
//
// Provider credentials come from the configuration file, the API_KEY_TMDB,
// API_KEY_TVDB and API_KEY_OMDB environment variables, or a .env file in the
// working directory. Exit status reflects the error kind: 3 when nothing
// matched, 2 for bad input or rejected credentials, 78 for configuration
// problems and 1 for everything else.
package main
