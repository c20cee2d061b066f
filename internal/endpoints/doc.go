// Package endpoints wraps each remote operation of TMDb, TVDb, OMDb and the
// legacy IMDb mobile API in one function.
//
// Every function validates its inputs before touching the network, issues a
// single request through a transport.Fetcher and maps the response status to
// one of the services error markers:
//
//   - services.ErrNotFound for empty result sets, 404s and provider error
//     sentinels
//   - services.ErrProviderMisuse for bad input, 400/405 and invalid
//     credentials (401)
//   - services.ErrNetwork for any other status or a missing payload
//
// On success the decoded JSON object is returned as a Payload.
package endpoints
