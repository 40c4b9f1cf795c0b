package collectors

import (
	"context"
	"strings"
)

// DefaultServices is the watchlist used when none is configured.
var DefaultServices = []string{
	"wazuh-agent",
	"clamav-daemon",
	"inotify",
	"usbguard",
}

// ServicesCollector reports the init-system state of every watched service.
type ServicesCollector struct {
	sh        Shell
	watchlist []string
}

// NewServicesCollector creates a ServicesCollector for the given watchlist.
func NewServicesCollector(sh Shell, watchlist []string) *ServicesCollector {
	return &ServicesCollector{sh: sh, watchlist: append([]string(nil), watchlist...)}
}

// Collect always returns exactly one entry per watched name.
func (c *ServicesCollector) Collect(ctx context.Context) ([]ServiceStatus, error) {
	p := &partial{fragment: FragmentServices}
	services := make([]ServiceStatus, 0, len(c.watchlist))

	for _, name := range c.watchlist {
		state := c.sh.Run(ctx, "systemctl is-active "+name)
		status, fallback := classifyServiceState(state.Output, state.OK())
		if fallback {
			// An unreachable init system is indistinguishable from a
			// stopped unit here; the literal is kept for the dashboard.
			log.Warn("service state unavailable, reporting fallback",
				"service", name,
				"status", status,
				"reason", string(state.Reason))
			p.add("systemctl is-active "+name, state.Err)
		}

		desc := c.sh.Run(ctx, "systemctl show "+name+" -p Description --value")
		p.add("systemctl show "+name, desc.Err)

		services = append(services, ServiceStatus{
			Name:        name,
			Status:      status,
			Description: optional(desc.Text()),
		})
	}

	return services, p.err()
}

// classifyServiceState maps `systemctl is-active` output to a reported state.
// is-active exits non-zero for every state but active, so a recognized word
// on stdout is trusted regardless of exit status. A failed query with nothing
// on stdout yields the inactive fallback.
func classifyServiceState(output string, ok bool) (status string, fallback bool) {
	word := strings.TrimSpace(output)
	if i := strings.IndexByte(word, '\n'); i >= 0 {
		word = strings.TrimSpace(word[:i])
	}

	switch word {
	case ServiceActive, ServiceInactive, ServiceFailed:
		return word, false
	case "":
		if !ok {
			return ServiceInactive, true
		}
	}
	return ServiceUnknown, false
}
