package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mapi/internal/config"
	"mapi/internal/testsupport"
)

const gooniesSearch = `{"page":1,"total_pages":1,"total_results":1,"results":[
	{"id":9340,"title":"The Goonies","release_date":"1985-06-07","overview":"A group of kids go treasure hunting."}
]}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	requests   *atomic.Int32
}

// setupCLITestEnv writes a config whose TMDb base URL points at a local
// server answering movie searches with body.
func setupCLITestEnv(t *testing.T, body string) cliTestEnv {
	t.Helper()
	isolateEnv(t)

	requests := new(atomic.Int32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/search/movie" || r.URL.Query().Get("api_key") != "tmdb-test" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithAPIKey("omdb", ""))
	cfg.TMDb.BaseURL = server.URL
	cfg.Logging.Level = "error"

	return cliTestEnv{cfg: cfg, configPath: writeTestConfig(t, cfg), requests: requests}
}

// isolateEnv blanks the variables that override configuration values.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"API_KEY_TMDB", "API_KEY_TVDB", "API_KEY_OMDB", "MAPI_CACHE_PATH", "MAPI_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	return testsupport.WriteConfigFile(t, string(content))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
