// Package services defines shared utilities consumed by the endpoint, provider
// and transport layers.
//
// Key responsibilities:
//   - Error markers (not found, provider misuse, network, configuration) plus
//     the Wrap helper that attaches provider and operation context.
//   - Context helpers that stamp correlation identifiers and provider names
//     for logging.
//   - SleepWithContext for cancellable backoff loops.
package services
