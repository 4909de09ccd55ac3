// Package cmdutil provides shared utilities for omadmctl commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oma-dm/goclient/internal/cli/output"
	"github.com/oma-dm/goclient/internal/cli/prompt"
	"github.com/oma-dm/goclient/internal/dmconfig"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/mo/devinfo"
	"github.com/oma-dm/goclient/pkg/mo/dmacc"
	"github.com/oma-dm/goclient/pkg/mo/persistent"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
	Verbose    bool
}

// LoadConfig loads and validates configuration from the --config flag (or
// the default search path), the way every subcommand that touches the
// tree or an account needs to.
func LoadConfig() (*dmconfig.Config, error) {
	cfg, err := dmconfig.Load(Flags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// BuildTree seeds a fresh DMTree from cfg: the mandatory DevInfo and DMAcc
// subtrees, plus the optional persistent ConfigCache MO. Callers must
// Close the tree when done.
func BuildTree(ctx context.Context, cfg *dmconfig.Config) (*dmtree.Tree, error) {
	tree := dmtree.New()

	if err := tree.AddPlugin(ctx, devinfo.New(cfg.DevInfo())); err != nil {
		return nil, fmt.Errorf("failed to register DevInfo: %w", err)
	}
	if err := tree.AddPlugin(ctx, dmacc.New(cfg.AccountSeeds())); err != nil {
		return nil, fmt.Errorf("failed to register DMAcc: %w", err)
	}
	if cfg.Persistent.Enabled {
		mo := persistent.New(cfg.PersistentMOConfig())
		if err := tree.AddPlugin(ctx, mo); err != nil {
			return nil, fmt.Errorf("failed to register ConfigCache: %w", err)
		}
	}

	return tree, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintResource prints a resource in the configured format. For table
// format, it uses the provided tableRenderer. For JSON/YAML, it outputs
// the resource directly.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// HandleAbort checks if err indicates the user aborted a prompt (Ctrl+C)
// and prints a message. Returns nil for abort, otherwise the original
// error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
