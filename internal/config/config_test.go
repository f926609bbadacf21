package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("MEDINTEL_SAMPLE_ROWS", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	work := t.TempDir()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return work
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultModel != "openai/gpt-3.5-turbo" || c.SampleRows != 50 || c.AnalysisTimeoutSec != 60 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ReportTitle != "Media Intelligence Report" || c.LogFormat != "console" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadEnvAndDotEnv(t *testing.T) {
	work := isolate(t)
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte("OPENROUTER_API_KEY=sk-from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDINTEL_SAMPLE_ROWS", "12")
	// godotenv never overrides variables that already exist.
	os.Unsetenv("OPENROUTER_API_KEY")
	t.Cleanup(func() { os.Unsetenv("OPENROUTER_API_KEY") })

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SampleRows != 12 {
		t.Fatalf("env override ignored: %d", c.SampleRows)
	}
	if c.APIKey != "sk-from-dotenv" {
		t.Fatalf("api key fallback: %q", c.APIKey)
	}
}

func TestSaveAndReload(t *testing.T) {
	isolate(t)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("sample_rows", "25"); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("default_provider", "Local"); err != nil {
		t.Fatal(err)
	}
	if err := Save(c, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if again.SampleRows != 25 || again.DefaultProvider != "ollama" {
		t.Fatalf("reload lost values: %+v", again)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	var c Global
	for _, kv := range [][2]string{
		{"sample_rows", "-1"},
		{"http_timeout_sec", "soon"},
		{"default_provider", "azure"},
		{"log_level", "loud"},
		{"nope", "1"},
	} {
		if err := c.Set(kv[0], kv[1]); err == nil {
			t.Fatalf("Set(%s=%s) should fail", kv[0], kv[1])
		}
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing explicit file should fall back to defaults: %v", err)
	}
}
