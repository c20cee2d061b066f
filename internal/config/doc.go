// Package config loads, validates and documents the mapi TOML configuration.
//
// Values are resolved in three steps: Default() supplies repository
// defaults, the TOML file (if any) overrides them, and normalize() fills
// API keys from the API_KEY_TMDB, API_KEY_TVDB and API_KEY_OMDB environment
// variables and expands "~" in paths. Validate() runs last and rejects
// settings the providers cannot use.
//
// CreateSample writes the embedded sample_config.toml so `mapi config init`
// produces a documented starting point.
package config
