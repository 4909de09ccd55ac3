// Command omadmctl is the CLI front end for this module's OMA-DM client
// core.
package main

import (
	"fmt"
	"os"

	"github.com/oma-dm/goclient/cmd/omadmctl/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
