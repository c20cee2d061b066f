package main

import (
	"os"
	"path/filepath"
	"testing"

	"mapi/internal/services"
	"mapi/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, gooniesSearch)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "[OK] API key configured")
	requireContains(t, out, "[WARN] API key missing (set api_key or API_KEY_OMDB)")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatalf("expected init to refuse overwriting %s", target)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"xml\"\n")

	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := services.ExitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2 (%v)", got, err)
	}
}

func TestConfigParseErrorIsConfigurationError(t *testing.T) {
	path := writeConfig(t, "[tmdb\napi_key = 1\n")

	_, _, err := runCLI(t, []string{"providers"}, path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if got := services.ExitCode(err); got != 78 {
		t.Fatalf("exit code = %d, want 78 (%v)", got, err)
	}
}

func TestConfigPath(t *testing.T) {
	env := setupCLITestEnv(t, gooniesSearch)

	out, _, err := runCLI(t, []string{"config", "path"}, env.configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, env.configPath+" (exists)")

	missing := filepath.Join(t.TempDir(), "absent.toml")
	out, _, err = runCLI(t, []string{"config", "path"}, missing)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	requireContains(t, out, missing+" (missing)")
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	isolateEnv(t)
	return testsupport.WriteConfigFile(t, contents)
}
