package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mapi"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
)

const statusLabelWidth = 6

// renderProviderStatus describes whether a provider can be searched with
// the loaded configuration. A missing key is a warning because the
// environment may still supply one at search time.
func renderProviderStatus(info providerInfo, colorize bool) string {
	state, color := "OK", ansiGreen
	notes := []string{"API key configured"}
	if !info.APIKey {
		state, color = "WARN", ansiYellow
		notes[0] = "API key missing (set api_key or " + mapi.APIKeyEnv(info.Name) + ")"
	}
	if info.Language != "" {
		notes = append(notes, "language "+info.Language)
	}
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, info.Name+":", state, strings.Join(notes, "; "))
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, count int, colorize bool) string {
	line := fmt.Sprintf("%s (%d)", strings.TrimSpace(title), count)
	if colorize {
		return ansiBold + line + ansiReset
	}
	return line
}

// isTerminal reports whether writer is an interactive terminal, which selects
// tables and colour over plain lines.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
