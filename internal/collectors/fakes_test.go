package collectors

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/breeze-rmm/system-reporter/internal/shell"
)

var errUnavailable = errors.New("unavailable")

// fakeSystem answers every query from fields; a nil field means failure.
type fakeSystem struct {
	hostname   string
	ipv4       string
	info       *host.InfoStat
	cores      int
	threads    int
	cpuInfo    []cpu.InfoStat
	vmem       *mem.VirtualMemoryStat
	partitions []disk.PartitionStat
	usage      map[string]*disk.UsageStat
	ifaces     psnet.InterfaceStatList
	links      map[string]LinkStats
}

func (f *fakeSystem) Hostname() (string, error) {
	if f.hostname == "" {
		return "", errUnavailable
	}
	return f.hostname, nil
}

func (f *fakeSystem) LookupIPv4(_ context.Context, _ string) (string, error) {
	if f.ipv4 == "" {
		return "", errUnavailable
	}
	return f.ipv4, nil
}

func (f *fakeSystem) HostInfo(context.Context) (*host.InfoStat, error) {
	if f.info == nil {
		return nil, errUnavailable
	}
	return f.info, nil
}

func (f *fakeSystem) CPUCounts(_ context.Context, logical bool) (int, error) {
	n := f.cores
	if logical {
		n = f.threads
	}
	if n == 0 {
		return 0, errUnavailable
	}
	return n, nil
}

func (f *fakeSystem) CPUInfo(context.Context) ([]cpu.InfoStat, error) {
	if f.cpuInfo == nil {
		return nil, errUnavailable
	}
	return f.cpuInfo, nil
}

func (f *fakeSystem) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	if f.vmem == nil {
		return nil, errUnavailable
	}
	return f.vmem, nil
}

func (f *fakeSystem) Partitions(context.Context) ([]disk.PartitionStat, error) {
	if f.partitions == nil {
		return nil, errUnavailable
	}
	return f.partitions, nil
}

func (f *fakeSystem) Usage(_ context.Context, mountPoint string) (*disk.UsageStat, error) {
	u, ok := f.usage[mountPoint]
	if !ok {
		return nil, errUnavailable
	}
	return u, nil
}

func (f *fakeSystem) Interfaces(context.Context) (psnet.InterfaceStatList, error) {
	if f.ifaces == nil {
		return nil, errUnavailable
	}
	return f.ifaces, nil
}

func (f *fakeSystem) LinkStats(_ context.Context, name string) (LinkStats, error) {
	s, ok := f.links[name]
	if !ok {
		return LinkStats{}, errUnavailable
	}
	return s, nil
}

// fakeShell returns canned results; unknown commands fail to spawn.
type fakeShell struct {
	results map[string]shell.Result
	calls   []string
}

func (f *fakeShell) Run(_ context.Context, command string) shell.Result {
	f.calls = append(f.calls, command)
	if res, ok := f.results[command]; ok {
		res.Command = command
		return res
	}
	return shell.Result{Command: command, Reason: shell.ReasonSpawn, Err: errUnavailable}
}

func ok(out string) shell.Result {
	return shell.Result{Output: out}
}

func exited(out string) shell.Result {
	return shell.Result{Output: out, Reason: shell.ReasonExit, Err: errors.New("exit status 3")}
}
