// Package cli wires the daemon's commands. The server command assembles
// the full stack from configuration; the remaining commands are small
// local utilities.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd is the base command. Running ammd without a subcommand starts
// the daemon.
var rootCmd = &cobra.Command{
	Use:   "ammd",
	Short: "goAMMd - constant-product AMM ledger daemon",
	Long: `goAMMd runs a standalone ledger for two-asset constant-product pools.
Transactions create pools, add and remove liquidity, and swap against the
reserves; ledgers close on demand and every applied transaction emits
queryable events.`,
	Version: "0.1.0-dev",
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (empty runs on defaults)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}
