package tree

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
)

var getPrincipal string

var getCmd = &cobra.Command{
	Use:   "get <uri>",
	Short: "Read a node from the DMTree",
	Long: `Get reads the node at uri, relative to the tree root (e.g. "./DevInfo/DevId").
An empty uri ("" or ".") reads the tree root.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getPrincipal, "principal", selfPrincipal, "Principal identity to evaluate ACLs against")
}

type nodeView struct {
	uri      string
	format   string
	value    string
	mimeType string
	children []string
}

func (v nodeView) Headers() []string { return []string{"Field", "Value"} }

func (v nodeView) Rows() [][]string {
	rows := [][]string{
		{"URI", v.uri},
		{"Format", v.format},
	}
	if len(v.children) > 0 {
		rows = append(rows, []string{"Children", strings.Join(v.children, ", ")})
	} else {
		rows = append(rows, []string{"Value", v.value})
		if v.mimeType != "" {
			rows = append(rows, []string{"MIMEType", v.mimeType})
		}
	}
	return rows
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	uri := args[0]
	if uri == "." {
		uri = ""
	}

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	dmTree, err := cmdutil.BuildTree(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dmTree.Close(ctx) }()

	node, err := dmTree.Get(ctx, uri, getPrincipal)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", uri, err)
	}

	view := nodeView{
		uri:      node.URI,
		format:   string(node.Format),
		value:    string(node.Value),
		mimeType: node.MIMEType,
		children: node.Children,
	}

	return cmdutil.PrintResource(os.Stdout, node, view)
}
