package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

// Built-in credentials used when no override file is present.
const (
	DefaultEndpoint        = "https://localhost:3001/functions/v1/system-data-receiver"
	DefaultAPIKey          = "YOUR_API_KEY_HERE"
	DefaultCredentialsFile = "/etc/system_reporter.conf"
	DefaultEnvFile         = DefaultConfigDir + "/system-reporter.env"
)

// Override keys recognized in the credentials file.
const (
	keyEndpoint = "API_ENDPOINT"
	keyAPIKey   = "API_KEY"
)

// Credentials is the receiver endpoint and key. It is read-only once built.
type Credentials struct {
	endpoint string
	apiKey   string
}

// NewCredentials builds Credentials, substituting defaults for empty values.
func NewCredentials(endpoint, apiKey string) Credentials {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	return Credentials{endpoint: endpoint, apiKey: apiKey}
}

func (c Credentials) Endpoint() string { return c.endpoint }

func (c Credentials) APIKey() string { return c.apiKey }

// MaskedAPIKey shows only the last four characters of the key.
func (c Credentials) MaskedAPIKey() string {
	const visible = 4
	if len(c.apiKey) <= visible {
		return strings.Repeat("*", len(c.apiKey))
	}
	return strings.Repeat("*", len(c.apiKey)-visible) + c.apiKey[len(c.apiKey)-visible:]
}

// IsDefaultKey reports whether the placeholder key is still in use.
func (c Credentials) IsDefaultKey() bool {
	return c.apiKey == DefaultAPIKey
}

// LoadCredentials overlays API_ENDPOINT and API_KEY from the KEY=VALUE file
// at path onto the defaults. Blank lines, lines starting with # and lines
// without = are skipped; the value is everything after the first =, kept
// verbatim. A later line wins over an earlier one. A missing file is not an
// error and an unreadable one is logged and ignored. Empty values never
// override.
func LoadCredentials(path string) Credentials {
	log := logging.L("config")
	if path == "" {
		path = DefaultCredentialsFile
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no credentials override file", "path", path)
		} else {
			log.Warn("ignoring unreadable credentials file", "path", path, logging.KeyError, err)
		}
		return NewCredentials("", "")
	}
	defer f.Close()

	values, err := parseKeyValues(f)
	if err != nil {
		log.Warn("ignoring unreadable credentials file", "path", path, logging.KeyError, err)
		return NewCredentials("", "")
	}

	creds := NewCredentials(values[keyEndpoint], values[keyAPIKey])
	log.Debug("credentials loaded", "path", path, "endpoint", creds.Endpoint(), "apiKey", creds.MaskedAPIKey())
	return creds
}

func parseKeyValues(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return values, sc.Err()
}

// LoadEnvFile exports the variables in a dotenv file into the process
// environment so SYSREPORTER_* settings can live beside a systemd unit.
// Variables already set in the environment win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
