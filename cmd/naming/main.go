// Command naming runs the Lattice Naming Service (§6): the namespace,
// registry, replica ledger, and lock manager behind two HTTP ports.
package main

import (
	"fmt"
	"os"

	"github.com/latticefs/lattice/cmd/naming/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
