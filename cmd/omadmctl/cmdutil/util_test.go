package cmdutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oma-dm/goclient/internal/dmconfig"
	"github.com/oma-dm/goclient/internal/cli/output"
)

type testTableRenderer struct {
	headers []string
	rows    [][]string
}

func (r testTableRenderer) Headers() []string { return r.headers }
func (r testTableRenderer) Rows() [][]string  { return r.rows }

func TestGetOutputFormatParsed(t *testing.T) {
	tests := []struct {
		flagValue string
		expected  output.Format
		wantErr   bool
	}{
		{"table", output.FormatTable, false},
		{"json", output.FormatJSON, false},
		{"yaml", output.FormatYAML, false},
		{"invalid", output.FormatTable, true},
	}

	for _, tt := range tests {
		t.Run(tt.flagValue, func(t *testing.T) {
			Flags.Output = tt.flagValue
			result, err := GetOutputFormatParsed()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsColorDisabled(t *testing.T) {
	Flags.NoColor = true
	assert.True(t, IsColorDisabled())

	Flags.NoColor = false
	assert.False(t, IsColorDisabled())
}

func TestPrintResource_JSON(t *testing.T) {
	Flags.Output = "json"
	defer func() { Flags.Output = "table" }()

	var buf bytes.Buffer
	err := PrintResource(&buf, map[string]string{"name": "srv1"}, testTableRenderer{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "srv1")
}

func TestPrintResource_YAML(t *testing.T) {
	Flags.Output = "yaml"
	defer func() { Flags.Output = "table" }()

	var buf bytes.Buffer
	err := PrintResource(&buf, map[string]string{"name": "srv1"}, testTableRenderer{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "srv1")
}

func TestPrintResource_Table(t *testing.T) {
	Flags.Output = "table"

	var buf bytes.Buffer
	renderer := testTableRenderer{headers: []string{"NAME"}, rows: [][]string{{"srv1"}}}
	err := PrintResource(&buf, nil, renderer)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "srv1")
}

func TestBuildTree_SeedsMandatorySubtrees(t *testing.T) {
	ctx := context.Background()
	cfg := dmconfig.Defaults()
	cfg.Device.DevId = "490154203237518"
	cfg.Accounts = []dmconfig.AccountConfig{{ServerID: "srv1", Addr: "https://dm.example.com"}}

	tree, err := BuildTree(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = tree.Close(ctx) }()

	require.NoError(t, tree.CheckMandatoryMO())

	node, err := tree.Get(ctx, "./DevInfo/DevId", "any")
	require.NoError(t, err)
	assert.Equal(t, "490154203237518", string(node.Value))
}

func TestBuildTree_PersistentDisabledByDefault(t *testing.T) {
	ctx := context.Background()
	cfg := dmconfig.Defaults()
	cfg.Device.DevId = "490154203237518"
	cfg.Accounts = []dmconfig.AccountConfig{{ServerID: "srv1", Addr: "https://dm.example.com"}}

	tree, err := BuildTree(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = tree.Close(ctx) }()

	uris, err := tree.ListURI(ctx, "x-oma-dm:mo:vendor-configcache:1.0")
	require.NoError(t, err)
	assert.Empty(t, uris)
}
