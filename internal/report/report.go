// Package report assembles the six collector fragments into one host report.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breeze-rmm/system-reporter/internal/collectors"
	"github.com/breeze-rmm/system-reporter/internal/health"
	"github.com/breeze-rmm/system-reporter/internal/logging"
)

var log = logging.L("report")

// StatusOnline is the only host status a reporter ever sends.
const StatusOnline = "online"

// Report is the wire document POSTed to the receiver.
type Report struct {
	Hostname     string                        `json:"hostname" yaml:"hostname"`
	IPAddress    string                        `json:"ip_address" yaml:"ip_address"`
	OSType       string                        `json:"os_type" yaml:"os_type"`
	OSVersion    string                        `json:"os_version" yaml:"os_version"`
	Status       string                        `json:"status" yaml:"status"`
	Hardware     collectors.Hardware           `json:"hardware" yaml:"hardware"`
	Storage      []collectors.StorageVolume    `json:"storage" yaml:"storage"`
	Network      []collectors.NetworkInterface `json:"network" yaml:"network"`
	Services     []collectors.ServiceStatus    `json:"services" yaml:"services"`
	Applications []collectors.ApplicationInfo  `json:"applications" yaml:"applications"`
}

// Watchlists names the services and packages the report covers.
type Watchlists struct {
	Services     []string
	Applications []collectors.AppWatch
}

// Assembler runs the collectors in a fixed order.
type Assembler struct {
	identity     *collectors.IdentityCollector
	hardware     *collectors.HardwareCollector
	storage      *collectors.StorageCollector
	network      *collectors.NetworkCollector
	services     *collectors.ServicesCollector
	applications *collectors.ApplicationsCollector
	monitor      *health.Monitor
}

// NewAssembler wires every collector to the given OS surfaces. A nil monitor
// gets a private one.
func NewAssembler(sys collectors.System, sh collectors.Shell, watch Watchlists, monitor *health.Monitor) *Assembler {
	if monitor == nil {
		monitor = health.NewMonitor()
	}
	return &Assembler{
		identity:     collectors.NewIdentityCollector(sys),
		hardware:     collectors.NewHardwareCollector(sys, sh),
		storage:      collectors.NewStorageCollector(sys),
		network:      collectors.NewNetworkCollector(sys),
		services:     collectors.NewServicesCollector(sh, watch.Services),
		applications: collectors.NewApplicationsCollector(sh, watch.Applications),
		monitor:      monitor,
	}
}

// Assemble builds a complete report. It fails only when identity cannot be
// established or ctx is cancelled; every other fragment degrades in place.
func (a *Assembler) Assemble(ctx context.Context) (*Report, error) {
	start := time.Now()

	id, err := a.identity.Collect(ctx)
	a.monitor.Record(collectors.FragmentIdentity, time.Since(start), err, collectors.ErrIdentity)
	if err != nil {
		return nil, fmt.Errorf("collect identity: %w", err)
	}

	r := &Report{
		Hostname:  id.Hostname,
		IPAddress: id.IPAddress,
		OSType:    id.OSType,
		OSVersion: id.OSVersion,
		Status:    StatusOnline,
	}

	r.Hardware = collect(ctx, a.monitor, collectors.FragmentHardware, a.hardware.Collect)
	r.Storage = collect(ctx, a.monitor, collectors.FragmentStorage, a.storage.Collect)
	r.Network = collect(ctx, a.monitor, collectors.FragmentNetwork, a.network.Collect)
	r.Services = collect(ctx, a.monitor, collectors.FragmentServices, a.services.Collect)
	r.Applications = collect(ctx, a.monitor, collectors.FragmentApplications, a.applications.Collect)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}

	log.Info("report assembled",
		"hostname", r.Hostname,
		"health", a.monitor.Summary(),
		"incomplete", a.monitor.Incomplete(),
		"volumes", len(r.Storage),
		"interfaces", len(r.Network),
		"services", len(r.Services),
		"applications", len(r.Applications),
		logging.KeyDurationMs, time.Since(start).Milliseconds())
	return r, nil
}

// collect runs one non-fatal collector and records its outcome.
func collect[T any](ctx context.Context, m *health.Monitor, fragment string, fn func(context.Context) (T, error)) T {
	start := time.Now()
	v, err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		err = fmt.Errorf("%s: %w", fragment, ctx.Err())
	}
	m.Record(fragment, time.Since(start), err)
	return v
}
