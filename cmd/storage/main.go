// Command storage runs a Lattice Storage Node (§6): a local directory
// subtree exposed over client and command HTTP ports, registered with a
// Naming Service.
package main

import (
	"fmt"
	"os"

	"github.com/latticefs/lattice/cmd/storage/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
