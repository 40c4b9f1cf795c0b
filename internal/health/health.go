// Package health records how completely each report fragment was collected.
package health

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

var log = logging.L("health")

// Status is the collection outcome of one fragment.
type Status string

const (
	Unknown   Status = "unknown"
	Healthy   Status = "healthy"
	Degraded  Status = "degraded"
	Unhealthy Status = "unhealthy"
)

// Check is the latest outcome for a named fragment.
type Check struct {
	Name      string
	Status    Status
	Message   string
	Duration  time.Duration
	UpdatedAt time.Time
}

// Monitor tracks fragment outcomes for a single run.
type Monitor struct {
	mu     sync.RWMutex
	checks map[string]Check
	order  []string
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{checks: make(map[string]Check)}
}

// Record classifies err for fragment: nil is healthy, an error matching any of
// fatal is unhealthy, anything else means the fragment was partially built.
func (m *Monitor) Record(fragment string, took time.Duration, err error, fatal ...error) {
	status := Healthy
	var message string
	if err != nil {
		status = Degraded
		message = err.Error()
		for _, f := range fatal {
			if errors.Is(err, f) {
				status = Unhealthy
				break
			}
		}
	}
	m.Update(fragment, status, message, took)
}

// Update stores the status for fragment.
func (m *Monitor) Update(fragment string, status Status, message string, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := m.checks[fragment]; !seen {
		m.order = append(m.order, fragment)
	}
	m.checks[fragment] = Check{
		Name:      fragment,
		Status:    status,
		Message:   message,
		Duration:  took,
		UpdatedAt: time.Now(),
	}

	if status != Healthy {
		log.Warn("fragment incomplete",
			logging.KeyFragment, fragment,
			"status", string(status),
			"message", message)
		return
	}
	log.Debug("fragment collected",
		logging.KeyFragment, fragment,
		logging.KeyDurationMs, took.Milliseconds())
}

// Overall returns the worst recorded status, or Unknown when nothing ran.
func (m *Monitor) Overall() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.checks) == 0 {
		return Unknown
	}
	worst := Healthy
	for _, c := range m.checks {
		if rank(c.Status) > rank(worst) {
			worst = c.Status
		}
	}
	return worst
}

// All returns checks in the order fragments were first recorded.
func (m *Monitor) All() []Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Check, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, m.checks[name])
	}
	return result
}

// Incomplete returns the sorted names of fragments that are not healthy.
func (m *Monitor) Incomplete() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name, c := range m.checks {
		if c.Status != Healthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Summary returns the overall status and per-fragment statuses.
func (m *Monitor) Summary() map[string]any {
	checks := m.All()
	fragments := make(map[string]string, len(checks))
	for _, c := range checks {
		fragments[c.Name] = string(c.Status)
	}
	return map[string]any{
		"status":    string(m.Overall()),
		"fragments": fragments,
	}
}

func rank(s Status) int {
	switch s {
	case Degraded:
		return 1
	case Unhealthy:
		return 2
	default:
		return 0
	}
}
