package account

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
	pkgaccount "github.com/oma-dm/goclient/pkg/account"
)

var showPrincipal string

var showCmd = &cobra.Command{
	Use:   "show <server-id>",
	Short: "Resolve and print one server account",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPrincipal, "principal", selfPrincipal, "Principal identity to evaluate ACLs against")
}

type accountView struct {
	acct *pkgaccount.Account
}

func (v accountView) Headers() []string { return []string{"Field", "Value"} }

func (v accountView) Rows() [][]string {
	rows := [][]string{
		{"Device ID", v.acct.ID},
		{"Server ID", v.acct.ServerID},
		{"Server URI", v.acct.ServerURI},
		{"DM Tree URI", v.acct.DMTreeURI},
	}
	if v.acct.ToServerCred != nil {
		rows = append(rows, []string{"To-server auth", v.acct.ToServerCred.Type.String()})
	} else {
		rows = append(rows, []string{"To-server auth", "(pre-accepted, no credential configured)"})
	}
	if v.acct.ToClientCred != nil {
		rows = append(rows, []string{"To-client auth", v.acct.ToClientCred.Type.String()})
	} else {
		rows = append(rows, []string{"To-client auth", "(pre-accepted, no credential configured)"})
	}
	return rows
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	serverID := args[0]

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	dmTree, err := cmdutil.BuildTree(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dmTree.Close(ctx) }()

	acct, err := pkgaccount.Resolve(ctx, dmTree, serverID, showPrincipal)
	if err != nil {
		return fmt.Errorf("failed to resolve account %q: %w", serverID, err)
	}

	return cmdutil.PrintResource(os.Stdout, acct, accountView{acct: acct})
}
