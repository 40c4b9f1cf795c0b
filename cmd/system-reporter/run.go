package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/breeze-rmm/system-reporter/internal/collectors"
	"github.com/breeze-rmm/system-reporter/internal/config"
	"github.com/breeze-rmm/system-reporter/internal/health"
	"github.com/breeze-rmm/system-reporter/internal/logging"
	"github.com/breeze-rmm/system-reporter/internal/report"
	"github.com/breeze-rmm/system-reporter/internal/shell"
	"github.com/breeze-rmm/system-reporter/internal/transport"
)

// OS surfaces used by a run; replaced in tests.
var (
	newSystem = func() collectors.System { return collectors.NewHostSystem() }
	newShell  = func(timeout time.Duration) collectors.Shell { return shell.New(timeout) }
)

// runReporter performs one collection run. It returns an error only when the
// run must exit non-zero: unsafe watchlists or a failed identity. A failed
// send is reported to the operator and still counts as a completed run.
func runReporter(ctx context.Context, stdout, stderr io.Writer) error {
	envErr := config.LoadEnvFile(envFile)

	cfg, loadErr := config.Load(cfgFile)
	if loadErr != nil {
		cfg = config.Default()
	}
	result := cfg.ValidateTiered()

	logOut, logCloser := logging.OpenOutput(logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer logCloser.Close()
	logging.Init(cfg.LogFormat, cfg.LogLevel, logOut)
	log := logging.L("main")

	if envErr != nil {
		log.Warn("ignoring env file", logging.KeyError, envErr)
	}
	if loadErr != nil {
		log.Warn("settings unreadable, using defaults", "file", cfgFile, logging.KeyError, loadErr)
	}
	for _, w := range result.Warnings {
		log.Warn("config validation", logging.KeyError, w)
	}

	path := credsFile
	if path == "" {
		path = cfg.CredentialsFile
	}
	creds := config.LoadCredentials(path)

	if verifyOnly {
		// Watchlists are never used by --verify.
		for _, f := range result.Fatals {
			log.Warn("config validation", logging.KeyError, f)
		}
		printVerify(stdout, creds)
		return nil
	}

	if result.HasFatals() {
		for _, f := range result.Fatals {
			log.Error("config validation", logging.KeyError, f)
		}
		return fmt.Errorf("invalid settings: %w", result.Fatals[0])
	}
	if dryRun && dryFormat != report.FormatJSON && dryFormat != report.FormatYAML {
		return fmt.Errorf("unsupported --format %q (use json or yaml)", dryFormat)
	}

	log.Info("starting collection", "version", version, "dryRun", dryRun)

	monitor := health.NewMonitor()
	assembler := report.NewAssembler(
		newSystem(),
		newShell(cfg.CommandTimeout),
		report.Watchlists{Services: cfg.Services, Applications: cfg.Applications},
		monitor,
	)

	r, err := assembler.Assemble(ctx)
	if err != nil {
		return err
	}

	if dryRun {
		return report.Write(stdout, r, dryFormat)
	}

	sender := transport.NewSender(creds, version,
		transport.WithTimeout(cfg.SendTimeout),
		transport.WithRetries(cfg.SendRetries))
	if err := sender.Send(ctx, r); err != nil {
		log.Error("delivery failed",
			"hostname", r.Hostname,
			"health", string(monitor.Overall()),
			logging.KeyError, err)
		failColor.Fprintf(stderr, "✗ Error sending data: %v\n", err)
		return nil
	}

	okColor.Fprintf(stdout, "✓ Data sent successfully for %s\n", r.Hostname)
	return nil
}
