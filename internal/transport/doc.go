// Package transport performs the HTTP requests issued by endpoint functions
// and caches their JSON responses.
//
// Client.Fetch builds a single GET or POST request, fills in a browser
// user agent when none is given, JSON-encodes POST bodies, retries
// connection failures and 502/503/504 responses on replayable requests and
// decodes the JSON object in the response.
//
// Cache persists responses in SQLite keyed by a hash of the full request.
// Entries expire after the configured retention window. Schema migration,
// pruning and clearing take a file lock so several processes can share one
// cache file.
package transport
