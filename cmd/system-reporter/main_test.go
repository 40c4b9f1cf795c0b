package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/breeze-rmm/system-reporter/internal/collectors"
	"github.com/breeze-rmm/system-reporter/internal/shell"
)

var errNoSource = errors.New("no source")

// bareSystem knows its hostname and address and nothing else.
type bareSystem struct {
	hostname string
}

func (s bareSystem) Hostname() (string, error) {
	if s.hostname == "" {
		return "", errNoSource
	}
	return s.hostname, nil
}

func (s bareSystem) LookupIPv4(context.Context, string) (string, error) { return "10.0.0.5", nil }
func (s bareSystem) HostInfo(context.Context) (*host.InfoStat, error)   { return nil, errNoSource }
func (s bareSystem) CPUCounts(context.Context, bool) (int, error)       { return 0, errNoSource }
func (s bareSystem) CPUInfo(context.Context) ([]cpu.InfoStat, error)    { return nil, errNoSource }

func (s bareSystem) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	return nil, errNoSource
}

func (s bareSystem) Partitions(context.Context) ([]disk.PartitionStat, error) {
	return nil, errNoSource
}

func (s bareSystem) Usage(context.Context, string) (*disk.UsageStat, error) {
	return nil, errNoSource
}

func (s bareSystem) Interfaces(context.Context) (psnet.InterfaceStatList, error) {
	return nil, errNoSource
}

func (s bareSystem) LinkStats(context.Context, string) (collectors.LinkStats, error) {
	return collectors.LinkStats{}, errNoSource
}

type noShell struct{}

func (noShell) Run(_ context.Context, command string) shell.Result {
	return shell.Result{Command: command, Reason: shell.ReasonSpawn, Err: errNoSource}
}

func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		cfgFile, credsFile = "", ""
		envFile = filepath.Join(os.TempDir(), "system-reporter-absent.env")
		verifyOnly, dryRun = false, false
		dryFormat = "json"
	}
	reset()
	origSystem, origShell := newSystem, newShell
	t.Cleanup(func() {
		reset()
		newSystem, newShell = origSystem, origShell
	})
}

func useHost(hostname string) {
	newSystem = func() collectors.System { return bareSystem{hostname: hostname} }
	newShell = func(time.Duration) collectors.Shell { return noShell{} }
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func receiver(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestVerifyPrintsMaskedKey(t *testing.T) {
	resetFlags(t)
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT=https://dash.example.com/recv\nAPI_KEY=sk_test_abcdef\n")
	verifyOnly = true

	var stdout, stderr bytes.Buffer
	if err := runReporter(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runReporter() error = %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "API Endpoint: https://dash.example.com/recv") {
		t.Fatalf("output missing endpoint:\n%s", out)
	}
	if !strings.Contains(out, "API Key: **********cdef") {
		t.Fatalf("output missing masked key:\n%s", out)
	}
	if strings.Contains(out, "sk_test_abcdef") {
		t.Fatalf("output leaks the key:\n%s", out)
	}
}

func TestVerifyIgnoresBadSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings string
	}{
		{name: "unsafe watchlist", settings: "log_level: error\nservices:\n  - \"sshd && reboot\"\n"},
		{name: "malformed yaml", settings: "log_level: [error\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			cfgFile = writeTemp(t, "system-reporter.yaml", tt.settings)
			credsFile = writeTemp(t, "system_reporter.conf", "API_KEY=abc123\n")
			verifyOnly = true

			var stdout bytes.Buffer
			if err := runReporter(context.Background(), &stdout, &bytes.Buffer{}); err != nil {
				t.Fatalf("runReporter() error = %v, want nil", err)
			}
			if !strings.Contains(stdout.String(), "API Key: **c123") {
				t.Fatalf("output = %q", stdout.String())
			}
		})
	}
}

func TestUnsafeWatchlistStopsCollection(t *testing.T) {
	resetFlags(t)
	useHost("host1")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\nservices:\n  - \"sshd && reboot\"\n")
	srv, calls := receiver(t, http.StatusOK)
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+srv.URL+"\n")

	if err := runReporter(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsafe service name")
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("POSTs = %d, want 0", got)
	}
}

func TestDeliveryFailureStillSucceeds(t *testing.T) {
	resetFlags(t)
	useHost("host1")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	srv, calls := receiver(t, http.StatusInternalServerError)
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+srv.URL+"\nAPI_KEY=abc123\n")

	var stdout, stderr bytes.Buffer
	if err := runReporter(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runReporter() error = %v, want nil on delivery failure", err)
	}
	if !strings.Contains(stderr.String(), "Error sending data") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("POSTs = %d, want 1", got)
	}
}

func TestUnreachableReceiverStillSucceeds(t *testing.T) {
	resetFlags(t)
	useHost("host1")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+url+"\n")

	var stderr bytes.Buffer
	if err := runReporter(context.Background(), &bytes.Buffer{}, &stderr); err != nil {
		t.Fatalf("runReporter() error = %v, want nil", err)
	}
	if !strings.Contains(stderr.String(), "Error sending data") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestDeliverySuccess(t *testing.T) {
	resetFlags(t)
	useHost("host1")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	srv, calls := receiver(t, http.StatusOK)
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+srv.URL+"\nAPI_KEY=abc123\n")

	var stdout bytes.Buffer
	if err := runReporter(context.Background(), &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runReporter() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Data sent successfully for host1") {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("POSTs = %d, want 1", got)
	}
}

func TestIdentityFailureFailsRun(t *testing.T) {
	resetFlags(t)
	useHost("")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	srv, calls := receiver(t, http.StatusOK)
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+srv.URL+"\n")

	err := runReporter(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, collectors.ErrIdentity) {
		t.Fatalf("runReporter() error = %v, want ErrIdentity", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("POSTs = %d, want 0", got)
	}
}

func TestDryRunPrintsWithoutSending(t *testing.T) {
	resetFlags(t)
	useHost("host1")
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	srv, calls := receiver(t, http.StatusOK)
	credsFile = writeTemp(t, "system_reporter.conf", "API_ENDPOINT="+srv.URL+"\n")
	dryRun = true
	dryFormat = "yaml"

	var stdout bytes.Buffer
	if err := runReporter(context.Background(), &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("runReporter() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "hostname: host1") {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("POSTs = %d, want 0", got)
	}
}

func TestDryRunRejectsUnknownFormat(t *testing.T) {
	resetFlags(t)
	cfgFile = writeTemp(t, "system-reporter.yaml", "log_level: error\n")
	credsFile = filepath.Join(t.TempDir(), "absent.conf")
	dryRun = true
	dryFormat = "xml"

	err := runReporter(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unsupported --format") {
		t.Fatalf("runReporter() error = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	if got := out.String(); got != "System Reporter v"+version+"\n" {
		t.Fatalf("version output = %q", got)
	}
}
