package collectors

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

// Identity is the load-bearing header of a report.
type Identity struct {
	Hostname  string
	IPAddress string
	OSType    string
	OSVersion string
}

// IdentityCollector resolves hostname, IPv4 address and OS family/version.
type IdentityCollector struct {
	sys System
}

// NewIdentityCollector creates an IdentityCollector.
func NewIdentityCollector(sys System) *IdentityCollector {
	return &IdentityCollector{sys: sys}
}

// Collect returns an error wrapping ErrIdentity when the hostname cannot be
// read or resolved to IPv4. OS lookup failures only degrade the OS fields.
func (c *IdentityCollector) Collect(ctx context.Context) (Identity, error) {
	hostname, err := c.sys.Hostname()
	if err != nil {
		return Identity{}, fmt.Errorf("%w: read hostname: %v", ErrIdentity, err)
	}
	if hostname == "" {
		return Identity{}, fmt.Errorf("%w: empty hostname", ErrIdentity)
	}

	ip, err := c.sys.LookupIPv4(ctx, hostname)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: resolve %s: %v", ErrIdentity, hostname, err)
	}

	id := Identity{
		Hostname:  hostname,
		IPAddress: ip,
		OSType:    osFamily(runtime.GOOS),
	}

	info, err := c.sys.HostInfo(ctx)
	if err != nil {
		log.Warn("host info unavailable, using build platform", "os", runtime.GOOS, logging.KeyError, err)
		return id, nil
	}
	if info.OS != "" {
		id.OSType = osFamily(info.OS)
	}
	id.OSVersion = info.KernelVersion
	return id, nil
}

// osFamily renders a GOOS-style name the way the dashboard expects ("Linux").
func osFamily(goos string) string {
	switch goos {
	case "":
		return ""
	case "darwin":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}
