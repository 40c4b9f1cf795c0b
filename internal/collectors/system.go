package collectors

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/breeze-rmm/system-reporter/internal/shell"
)

// System is the structured OS inventory surface the collectors read from.
type System interface {
	Hostname() (string, error)
	LookupIPv4(ctx context.Context, hostname string) (string, error)
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, mountPoint string) (*disk.UsageStat, error)
	Interfaces(ctx context.Context) (psnet.InterfaceStatList, error)
	LinkStats(ctx context.Context, name string) (LinkStats, error)
}

// Shell runs text-producing inspection commands.
type Shell interface {
	Run(ctx context.Context, command string) shell.Result
}

// LinkStats is the per-interface state query result.
type LinkStats struct {
	Up        bool
	SpeedMbps int
}

// HostSystem implements System against the running host via gopsutil.
type HostSystem struct {
	sysfsNet string
}

// NewHostSystem creates a System backed by the local machine.
func NewHostSystem() *HostSystem {
	return &HostSystem{sysfsNet: "/sys/class/net"}
}

func (h *HostSystem) Hostname() (string, error) {
	return os.Hostname()
}

// LookupIPv4 resolves hostname and returns its first IPv4 address.
func (h *HostSystem) LookupIPv4(ctx context.Context, hostname string) (string, error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", hostname)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address for %q", hostname)
}

func (h *HostSystem) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (h *HostSystem) CPUCounts(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (h *HostSystem) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (h *HostSystem) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (h *HostSystem) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (h *HostSystem) Usage(ctx context.Context, mountPoint string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, mountPoint)
}

func (h *HostSystem) Interfaces(ctx context.Context) (psnet.InterfaceStatList, error) {
	return psnet.InterfacesWithContext(ctx)
}

// LinkStats reads the up flag from the kernel and the negotiated speed from
// sysfs. Interfaces without a speed file (virtual, wireless) report zero.
func (h *HostSystem) LinkStats(_ context.Context, name string) (LinkStats, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return LinkStats{}, err
	}

	stats := LinkStats{Up: iface.Flags&net.FlagUp != 0}
	if data, err := os.ReadFile(filepath.Join(h.sysfsNet, name, "speed")); err == nil {
		if speed, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			stats.SpeedMbps = speed
		}
	}
	return stats, nil
}
