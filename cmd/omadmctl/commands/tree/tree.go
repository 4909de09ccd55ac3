// Package tree implements the "tree" command group: reading nodes and
// enumerating registered managed-object subtrees from a DMTree freshly
// seeded from configuration.
package tree

import (
	"github.com/spf13/cobra"
)

// Cmd is the "tree" command group, exported for root registration.
var Cmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect the DMTree seeded from configuration",
}

// selfPrincipal is used for these read-only, out-of-session inspections;
// it matches pkg/session's own default before any server has authenticated.
const selfPrincipal = "self"

func init() {
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(listCmd)
}
