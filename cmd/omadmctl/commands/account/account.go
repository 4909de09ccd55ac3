// Package account implements the "account" command group: inspecting
// server account resolution (device identity, server URL, and resolved
// credential directions) from a DMTree seeded from configuration.
package account

import (
	"github.com/spf13/cobra"
)

// Cmd is the "account" command group, exported for root registration.
var Cmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect resolved DM server accounts",
}

const selfPrincipal = "self"

func init() {
	Cmd.AddCommand(showCmd)
}
