// Package commands implements the CLI commands for omadmctl.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
	accountcmd "github.com/oma-dm/goclient/cmd/omadmctl/commands/account"
	sessioncmd "github.com/oma-dm/goclient/cmd/omadmctl/commands/session"
	treecmd "github.com/oma-dm/goclient/cmd/omadmctl/commands/tree"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "omadmctl",
	Short: "OMA-DM client control — drive and inspect management sessions",
	Long: `omadmctl is the command-line front end for this module's OMA-DM client
core: it seeds a DMTree from a configuration file, drives a management
session against a server, and inspects the tree and resolved accounts.

Use "omadmctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ConfigFile, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./omadm.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(sessioncmd.Cmd)
	rootCmd.AddCommand(treecmd.Cmd)
	rootCmd.AddCommand(accountcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
