package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticefs/lattice/internal/cli/output"
)

var (
	statusOutput      string
	statusCommandPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a storage node's indexed file count",
	Long: `status queries a running storage node's /debug/status endpoint on
its command port and renders its identity and locally indexed file count.

Examples:
  storage status --command-port 9050
  storage status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusCommandPort, "command-port", 9050, "command port of the running storage node")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "output format (table|json|yaml)")
}

type debugStatus struct {
	StorageIP    string `json:"storage_ip"`
	ClientPort   int    `json:"client_port"`
	CommandPort  int    `json:"command_port"`
	IndexedFiles int    `json:"indexed_files"`
}

// Headers implements output.TableRenderer.
func (s debugStatus) Headers() []string {
	return []string{"Storage IP", "Client Port", "Command Port", "Indexed Files"}
}

// Rows implements output.TableRenderer.
func (s debugStatus) Rows() [][]string {
	return [][]string{{
		s.StorageIP,
		fmt.Sprint(s.ClientPort),
		fmt.Sprint(s.CommandPort),
		fmt.Sprint(s.IndexedFiles),
	}}
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/debug/status", statusCommandPort))
	if err != nil {
		return fmt.Errorf("storage node unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var status debugStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decode status response: %w", err)
	}

	printer := output.NewPrinter(os.Stdout, format, true)
	return printer.Print(status)
}
