// Package textutil provides the string helpers used when rendering metadata
// records into human-readable labels.
//
// The primary use cases are:
//   - Title casing with lowercase and uppercase exception words
//   - Cleaning up separators left behind when template fields are missing
//   - Sanitizing rendered labels for safe filesystem use
package textutil
