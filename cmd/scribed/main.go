package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribe-dev/scribe/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐┬─┐┬┌┐ ┌─┐
  ╚═╗│  ├┬┘│├┴┐├┤
  ╚═╝└─┘┴└─┴└─┘└─┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "scribed",
		Short: "The stream archive control daemon",
		Long: `Scribed is the control daemon for scribe stream archives.

It serves the archive control protocol over WebSocket: clients open
control sessions, authenticate, and drive recordings, replays, and
segment housekeeping through them. Features include:

  • Single-threaded conductor with pluggable idle strategies
  • Challenge/response control session authentication
  • Detached segment offload to secondary storage
  • Prometheus metrics and a read-only admin API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		runCmd(),
		checkConfigCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the scribe ASCII art banner.
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
