package session

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
	"github.com/oma-dm/goclient/pkg/metrics"
	prometheusmetrics "github.com/oma-dm/goclient/pkg/metrics/prometheus"
	pkgsession "github.com/oma-dm/goclient/pkg/session"
)

var (
	startServerID  string
	startSessionID int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a client-initiated session against a configured account",
	Long: `Start binds a new session to the account matching --server, resolving
its credential directions from the DMTree, and reports the resulting
authentication state. It does not exchange any packets — use "session
drive" to actually converse with a server.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startServerID, "server", "", "Server ID to start the session against (required)")
	startCmd.Flags().IntVar(&startSessionID, "session-id", 1, "Session ID to use")
	_ = startCmd.MarkFlagRequired("server")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	tree, err := cmdutil.BuildTree(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = tree.Close(ctx) }()

	var sessionMetrics metrics.SessionMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		sessionMetrics = prometheusmetrics.NewSessionMetrics()
	}

	sess := pkgsession.New(tree, sessionMetrics)
	if err := sess.SessionStart(ctx, startServerID, startSessionID); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() { _ = sess.SessionClose(ctx) }()

	cmdutil.PrintSuccess(fmt.Sprintf("session started against %s (session %d)", startServerID, startSessionID))
	return nil
}
