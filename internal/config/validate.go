package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

// Watchlist names are interpolated into shell commands.
var watchNameRegex = regexp.MustCompile(`^[A-Za-z0-9@._:+-]+$`)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validLogFormats = map[string]bool{
	logging.FormatText:    true,
	logging.FormatJSON:    true,
	logging.FormatRFC5424: true,
}

const (
	minCommandTimeout = time.Second
	maxCommandTimeout = 5 * time.Minute
	minSendTimeout    = time.Second
	maxSendTimeout    = 5 * time.Minute
	maxSendRetries    = 5
)

// ValidationResult separates errors that must stop the run from values that
// were corrected in place.
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals followed by warnings.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	return append(all, r.Warnings...)
}

// ValidateTiered checks c, clamping out-of-range numbers and resetting
// unknown log settings. Watchlist entries that are unsafe to pass to a shell
// are fatal.
func (c *Config) ValidateTiered() ValidationResult {
	var res ValidationResult
	warn := func(format string, args ...any) {
		res.Warnings = append(res.Warnings, fmt.Errorf(format, args...))
	}

	for _, name := range c.Services {
		if !watchNameRegex.MatchString(name) {
			res.Fatals = append(res.Fatals, fmt.Errorf("service name %q contains unsupported characters", name))
		}
	}
	for i, app := range c.Applications {
		if !watchNameRegex.MatchString(app.Package) {
			res.Fatals = append(res.Fatals, fmt.Errorf("applications[%d] package %q contains unsupported characters", i, app.Package))
		}
		if strings.TrimSpace(app.Name) == "" {
			warn("applications[%d] has no display name, using package %q", i, app.Package)
			c.Applications[i].Name = app.Package
		}
	}

	if c.CommandTimeout < minCommandTimeout {
		warn("command_timeout %s is below minimum %s, clamping", c.CommandTimeout, minCommandTimeout)
		c.CommandTimeout = minCommandTimeout
	} else if c.CommandTimeout > maxCommandTimeout {
		warn("command_timeout %s exceeds maximum %s, clamping", c.CommandTimeout, maxCommandTimeout)
		c.CommandTimeout = maxCommandTimeout
	}

	if c.SendTimeout < minSendTimeout {
		warn("send_timeout %s is below minimum %s, clamping", c.SendTimeout, minSendTimeout)
		c.SendTimeout = minSendTimeout
	} else if c.SendTimeout > maxSendTimeout {
		warn("send_timeout %s exceeds maximum %s, clamping", c.SendTimeout, maxSendTimeout)
		c.SendTimeout = maxSendTimeout
	}

	if c.SendRetries < 0 {
		warn("send_retries %d is negative, clamping to 0", c.SendRetries)
		c.SendRetries = 0
	} else if c.SendRetries > maxSendRetries {
		warn("send_retries %d exceeds maximum %d, clamping", c.SendRetries, maxSendRetries)
		c.SendRetries = maxSendRetries
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		warn("log_level %q is not valid (use debug, info, warn, error), using info", c.LogLevel)
		c.LogLevel = "info"
	}
	if c.LogFormat != "" && !validLogFormats[strings.ToLower(c.LogFormat)] {
		warn("log_format %q is not valid (use text, json or rfc5424), using text", c.LogFormat)
		c.LogFormat = logging.FormatText
	}
	if c.LogMaxSizeMB < 1 {
		warn("log_max_size_mb %d is below minimum 1, clamping", c.LogMaxSizeMB)
		c.LogMaxSizeMB = 1
	}

	return res
}
