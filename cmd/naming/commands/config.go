package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticefs/lattice/internal/cli/prompt"
)

var configRegistrationPort int

// configCmd groups configuration-related subcommands, mirroring the
// teacher's `dittofs config` command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or reset naming service configuration",
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Fetch the JSON Schema for the naming service's request bodies",
	Long: `schema fetches the /schema document from a running naming service's
registration port, generated by the service with invopop/jsonschema.`,
	RunE: runSchema,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local config file after confirmation",
	RunE:  runReset,
}

func init() {
	schemaCmd.Flags().IntVar(&configRegistrationPort, "registration-port", 8050, "registration port of the running naming service")
	configCmd.AddCommand(schemaCmd)
	configCmd.AddCommand(resetCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/schema", configRegistrationPort))
	if err != nil {
		return fmt.Errorf("naming service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	_, err = io.Copy(cmd.OutOrStdout(), resp.Body)
	return err
}

func runReset(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = "lattice-naming.yaml"
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
