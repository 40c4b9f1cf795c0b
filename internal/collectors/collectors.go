// Package collectors gathers the six independent fragments of a host report:
// identity, hardware, storage, network, services and applications.
//
// Collectors never share state. Each returns its fragment together with an
// optional partial error describing the data sources that failed; the
// fragment is always usable and carries defaults where data was missing.
// Only the identity collector has a fatal failure path.
package collectors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

var log = logging.L("collectors")

// ErrIdentity marks a failure to establish hostname or IP address.
var ErrIdentity = errors.New("identity unavailable")

// Fragment names, in collection order.
const (
	FragmentIdentity     = "identity"
	FragmentHardware     = "hardware"
	FragmentStorage      = "storage"
	FragmentNetwork      = "network"
	FragmentServices     = "services"
	FragmentApplications = "applications"
)

// partial accumulates non-fatal source failures for one fragment.
type partial struct {
	fragment string
	errs     []error
}

func (p *partial) add(source string, err error) {
	if err == nil {
		return
	}
	log.Warn("data source unavailable",
		logging.KeyFragment, p.fragment,
		"source", source,
		logging.KeyError, err,
	)
	p.errs = append(p.errs, fmt.Errorf("%s: %w", source, err))
}

func (p *partial) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s partially collected: %w", p.fragment, errors.Join(p.errs...))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// labeledField returns the value of the first "Label: value" line whose label
// matches exactly and whose value is not listed in skip.
func labeledField(text, label string, skip ...string) string {
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != label {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || contains(skip, value) {
			continue
		}
		return value
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
