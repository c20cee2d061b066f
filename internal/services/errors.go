package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers shared by every layer. Callers classify failures with
// errors.Is against these values.
var (
	// ErrNotFound marks a well-formed request that legitimately has no results.
	ErrNotFound = errors.New("not found")
	// ErrProviderMisuse marks invalid or conflicting parameters and bad or
	// missing credentials.
	ErrProviderMisuse = errors.New("provider misuse")
	// ErrNetwork marks unreachable services, unexpected statuses and
	// malformed payloads.
	ErrNetwork       = errors.New("network unavailable")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes provider context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, provider, operation, message string, err error) error {
	detail := buildDetail(provider, operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrProviderMisuse):
		return "provider_misuse"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNetwork):
		return "network"
	default:
		return "unknown"
	}
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return 0
	case "not_found":
		return 3
	case "provider_misuse", "validation":
		return 2
	case "configuration":
		return 78
	default:
		return 1
	}
}

func buildDetail(provider, operation, message string) string {
	parts := make([]string, 0, 3)
	if provider = strings.TrimSpace(provider); provider != "" {
		parts = append(parts, provider)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "metadata request failed"
	}
	return strings.Join(parts, ": ")
}
