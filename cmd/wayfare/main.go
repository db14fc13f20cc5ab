package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfare-dev/wayfare/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┬ ┬┌─┐┌─┐┬─┐┌─┐
  ║║║├─┤└┬┘├┤ ├─┤├┬┘├┤
  ╚╩╝┴ ┴ ┴ └  ┴ ┴┴└─└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "wayfare",
		Short: "Server-driven navigation for single-page applications",
		Long: `Wayfare resolves URLs against an ordered route table and drives
view changes over a WebSocket session.

  • Ordered route table, first match wins
  • Per-session navigation history with back/forward
  • View preloading with cache and rate limits
  • Prometheus metrics and OpenTelemetry tracing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		routesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}
}

// printBanner prints the Wayfare ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
