// Package session implements the "session" command group: starting and
// driving an OMA-DM management session against a configured server
// account.
package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the "session" command group, exported for root registration.
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Start and drive OMA-DM management sessions",
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(driveCmd)
}
