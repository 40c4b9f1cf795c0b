package collectors

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
)

// loopbackNames are skipped regardless of their addresses.
var loopbackNames = map[string]bool{
	"lo":  true,
	"lo0": true,
}

// NetworkCollector reports non-loopback interfaces that carry IPv4.
type NetworkCollector struct {
	sys System
}

// NewNetworkCollector creates a NetworkCollector.
func NewNetworkCollector(sys System) *NetworkCollector {
	return &NetworkCollector{sys: sys}
}

// Collect keeps the last IPv4 address listed for each interface. Link state
// and speed come from a separate per-interface query; when that query fails
// the interface is reported down with no speed.
func (c *NetworkCollector) Collect(ctx context.Context) ([]NetworkInterface, error) {
	p := &partial{fragment: FragmentNetwork}
	result := []NetworkInterface{}

	ifaces, err := c.sys.Interfaces(ctx)
	if err != nil {
		p.add("interfaces", err)
		return result, p.err()
	}

	for _, iface := range ifaces {
		if loopbackNames[iface.Name] {
			continue
		}

		var ipv4 string
		for _, addr := range iface.Addrs {
			if ip, ok := parseIPv4(addr.Addr); ok {
				ipv4 = ip
			}
		}
		if ipv4 == "" {
			continue
		}

		ni := NetworkInterface{
			Name:       iface.Name,
			IPAddress:  ipv4,
			MACAddress: optional(iface.HardwareAddr),
			Status:     LinkDown,
		}

		stats, err := c.sys.LinkStats(ctx, iface.Name)
		if err != nil {
			p.add("link stats "+iface.Name, err)
		} else {
			if stats.Up {
				ni.Status = LinkUp
			}
			if stats.SpeedMbps > 0 {
				ni.Speed = optional(fmt.Sprintf("%d Mbps", stats.SpeedMbps))
			}
		}

		result = append(result, ni)
	}

	return result, p.err()
}

// parseIPv4 accepts "a.b.c.d/len" or a bare address.
func parseIPv4(s string) (string, bool) {
	s = strings.TrimSpace(s)
	var addr netip.Addr
	if prefix, err := netip.ParsePrefix(s); err == nil {
		addr = prefix.Addr()
	} else if a, err := netip.ParseAddr(s); err == nil {
		addr = a
	} else {
		return "", false
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}
