// Package commands implements the storage daemon's CLI, following the
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

// rootCmd is `storage <client_port> <command_port> <registration_port>
// <root_dir>`: §6's positional CLI surface.
var rootCmd = &cobra.Command{
	Use:   "storage <client_port> <command_port> <registration_port> <root_dir>",
	Short: "Lattice Storage Node",
	Long: `storage runs a Lattice Storage Node: a local directory subtree
exposed over a client port (byte-level reads/writes) and a command port
(create/delete/copy, issued only by the Naming Service), registered with
the Naming Service's registration port on startup.

Example:
  storage 9049 9050 8050 ./data`,
	Args:          cobra.ExactArgs(4),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStart,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lattice-storage.yaml)")
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
