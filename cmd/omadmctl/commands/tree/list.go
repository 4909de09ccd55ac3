package tree

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list <urn>",
	Short: "List the base URIs of every registered subtree advertising urn",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

type uriListView struct {
	uris []string
}

func (v uriListView) Headers() []string { return []string{"Base URI"} }

func (v uriListView) Rows() [][]string {
	rows := make([][]string, len(v.uris))
	for i, u := range v.uris {
		rows[i] = []string{u}
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	urn := args[0]

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	dmTree, err := cmdutil.BuildTree(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dmTree.Close(ctx) }()

	uris, err := dmTree.ListURI(ctx, urn)
	if err != nil {
		return err
	}

	return cmdutil.PrintResource(os.Stdout, uris, uriListView{uris: uris})
}
