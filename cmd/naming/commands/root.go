// Package commands implements the naming daemon's CLI, following the
// teacher's cmd/dittofs/commands cobra layout.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	cfgFile string
)

// rootCmd is `naming <service_port> <registration_port>`: §6's positional
// CLI surface doubles as the root command's own invocation, since the
// Naming Service has exactly one way to start.
var rootCmd = &cobra.Command{
	Use:   "naming <service_port> <registration_port>",
	Short: "Lattice Naming Service",
	Long: `naming runs the Lattice Naming Service: the namespace tree, Storage
Node registry, replica ledger, and lock manager behind the service and
registration HTTP ports described in the distributed file-system
coordinator spec.

Example:
  naming 8049 8050`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStart,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lattice-naming.yaml)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}
