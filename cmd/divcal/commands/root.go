package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	owner   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "divcal",
	Short: "台股股利日曆 - Taiwan stock dividend calendar",
	Long: `divcal Unified CLI

Taiwan stock dividend calendar service: month grid of cash dividend
pay dates, filters, yield calculator and per-stock history.

Usage:
  go run ./cmd/divcal [command]

Examples:
  go run ./cmd/divcal api
  go run ./cmd/divcal calendar --year 2024 --month 7 --high-yield
  go run ./cmd/divcal stock 2330 --chart 2330.png
  go run ./cmd/divcal watchlist add 2330
  go run ./cmd/divcal scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs to stdout)")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "cli", "watchlist owner id")
}
