package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/breeze-rmm/system-reporter/internal/config"
)

var version = "dev"

var (
	cfgFile    string
	credsFile  string
	envFile    string
	verifyOnly bool
	dryRun     bool
	dryFormat  string
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "system-reporter",
	Short: "Report host inventory to the dashboard",
	Long: `system-reporter collects one snapshot of this host's identity, hardware,
storage, network, service and application state and POSTs it to the
configured receiver. Run it from cron or a systemd timer.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runReporter(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "System Reporter v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is "+config.DefaultConfigDir+"/system-reporter.yaml)")
	rootCmd.PersistentFlags().StringVar(&credsFile, "credentials", "", "endpoint/key override file (default is "+config.DefaultCredentialsFile+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "optional KEY=VALUE file exporting SYSREPORTER_* settings")
	rootCmd.Flags().BoolVar(&verifyOnly, "verify", false, "print version, endpoint and masked key, then exit")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "collect and print the report without sending it")
	rootCmd.Flags().StringVar(&dryFormat, "format", "json", "dry-run output format: json or yaml")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		failColor.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func printVerify(w io.Writer, creds config.Credentials) {
	fmt.Fprintf(w, "System Reporter v%s\n", version)
	fmt.Fprintf(w, "API Endpoint: %s\n", creds.Endpoint())
	fmt.Fprintf(w, "API Key: %s\n", creds.MaskedAPIKey())
	if creds.IsDefaultKey() {
		failColor.Fprintf(w, "✗ API key is still the placeholder; set API_KEY in the credentials file\n")
	}
}
