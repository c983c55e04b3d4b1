package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticefs/lattice/internal/cli/prompt"
)

// configCmd groups configuration-related subcommands, mirroring the
// teacher's `dittofs config` command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset storage node configuration",
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local config file after confirmation",
	RunE:  runReset,
}

func init() {
	configCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = "lattice-storage.yaml"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cmd.Printf("no config file at %s, nothing to reset\n", path)
		return nil
	}

	ok, err := prompt.Confirm(fmt.Sprintf("Delete %s", path), false)
	if err != nil {
		return err
	}
	if !ok {
		cmd.Println("aborted")
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove config file: %w", err)
	}
	cmd.Printf("removed %s\n", path)
	return nil
}
