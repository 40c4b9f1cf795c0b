package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system_reporter.conf")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadCredentialsMissingFileUsesDefaults(t *testing.T) {
	creds := LoadCredentials(filepath.Join(t.TempDir(), "absent.conf"))
	if creds.Endpoint() != DefaultEndpoint || creds.APIKey() != DefaultAPIKey {
		t.Fatalf("creds = %q/%q, want defaults", creds.Endpoint(), creds.APIKey())
	}
	if !creds.IsDefaultKey() {
		t.Fatal("expected placeholder key")
	}
}

func TestLoadCredentialsKeyOnly(t *testing.T) {
	creds := LoadCredentials(writeFile(t, "API_KEY=abc123\n"))
	if creds.Endpoint() != DefaultEndpoint {
		t.Fatalf("Endpoint() = %q, want default", creds.Endpoint())
	}
	if creds.APIKey() != "abc123" {
		t.Fatalf("APIKey() = %q, want abc123", creds.APIKey())
	}
}

func TestLoadCredentialsOverrides(t *testing.T) {
	content := "# receiver settings\n\n" +
		"API_ENDPOINT=https://dash.example.com/functions/v1/system-data-receiver\n" +
		"API_KEY=sk_live_0123456789\n" +
		"UNRELATED=ignored\n"
	creds := LoadCredentials(writeFile(t, content))
	if creds.Endpoint() != "https://dash.example.com/functions/v1/system-data-receiver" {
		t.Fatalf("Endpoint() = %q", creds.Endpoint())
	}
	if creds.APIKey() != "sk_live_0123456789" {
		t.Fatalf("APIKey() = %q", creds.APIKey())
	}
}

func TestLoadCredentialsKeepsValueVerbatim(t *testing.T) {
	creds := LoadCredentials(writeFile(t, "API_KEY=ab #cd1234\nAPI_ENDPOINT=https://h.example.com/recv?a=b\n"))
	if creds.APIKey() != "ab #cd1234" {
		t.Fatalf("APIKey() = %q, want the text after the first =", creds.APIKey())
	}
	if creds.Endpoint() != "https://h.example.com/recv?a=b" {
		t.Fatalf("Endpoint() = %q", creds.Endpoint())
	}
}

func TestLoadCredentialsSkipsLinesWithoutEquals(t *testing.T) {
	content := "some junk line\n  # API_KEY=commented\nAPI_KEY=abc123\n"
	creds := LoadCredentials(writeFile(t, content))
	if creds.APIKey() != "abc123" {
		t.Fatalf("APIKey() = %q, want abc123", creds.APIKey())
	}
}

func TestLoadCredentialsLastLineWins(t *testing.T) {
	creds := LoadCredentials(writeFile(t, "API_KEY=first\nAPI_KEY=second\n"))
	if creds.APIKey() != "second" {
		t.Fatalf("APIKey() = %q, want second", creds.APIKey())
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system-reporter.env")
	if err := os.WriteFile(path, []byte("# settings\nSYSREPORTER_LOG_FORMAT=json\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SYSREPORTER_LOG_FORMAT") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	cfgPath := filepath.Join(t.TempDir(), "system-reporter.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: info\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat = %q, want json from env file", cfg.LogFormat)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
}

func TestLoadCredentialsEmptyValueKeepsDefault(t *testing.T) {
	creds := LoadCredentials(writeFile(t, "API_ENDPOINT=\nAPI_KEY=abc123\n"))
	if creds.Endpoint() != DefaultEndpoint {
		t.Fatalf("Endpoint() = %q, want default", creds.Endpoint())
	}
}

func TestLoadCredentialsUnreadableUsesDefaults(t *testing.T) {
	creds := LoadCredentials(t.TempDir())
	if creds.Endpoint() != DefaultEndpoint || creds.APIKey() != DefaultAPIKey {
		t.Fatalf("creds = %q/%q, want defaults", creds.Endpoint(), creds.APIKey())
	}
}

func TestMaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"abc123", "**c123"},
		{"YOUR_API_KEY_HERE", "*************HERE"},
		{"abcd", "****"},
		{"ab", "**"},
	}
	for _, tt := range tests {
		if got := NewCredentials("", tt.key).MaskedAPIKey(); got != tt.want {
			t.Errorf("MaskedAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
