package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/oma-dm/goclient/cmd/omadmctl/cmdutil"
	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/pkg/metrics"
	prometheusmetrics "github.com/oma-dm/goclient/pkg/metrics/prometheus"
	pkgsession "github.com/oma-dm/goclient/pkg/session"
)

var (
	driveServerID  string
	driveSessionID int
	driveAddr      string
	driveTimeout   time.Duration
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Drive a full session round-trip against a server over HTTP",
	Long: `Drive starts a session against --server, then repeatedly composes an
outbound packet, POSTs it to the account's configured address (or --addr),
and feeds the response back in, until the session ends.

The HTTP exchange here is a thin transport the CLI supplies for its own
use — the session core itself never defines or depends on one.`,
	RunE: runDrive,
}

func init() {
	driveCmd.Flags().StringVar(&driveServerID, "server", "", "Server ID to drive the session against (required)")
	driveCmd.Flags().IntVar(&driveSessionID, "session-id", 1, "Session ID to use")
	driveCmd.Flags().StringVar(&driveAddr, "addr", "", "Server URL (overrides the account's configured address)")
	driveCmd.Flags().DurationVar(&driveTimeout, "timeout", 30*time.Second, "Per-request HTTP timeout")
	_ = driveCmd.MarkFlagRequired("server")
}

func runDrive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	addr := driveAddr
	if addr == "" {
		for _, a := range cfg.Accounts {
			if a.ServerID == driveServerID {
				addr = a.Addr
				break
			}
		}
	}
	if addr == "" {
		return fmt.Errorf("no address configured for server %q; pass --addr", driveServerID)
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
	if err := sess.SessionStart(ctx, driveServerID, driveSessionID); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() { _ = sess.SessionClose(ctx) }()

	client := &http.Client{Timeout: driveTimeout}

	var reply []byte
	for round := 1; ; round++ {
		packet, err := sess.GetNextPacket(ctx)
		if errors.Is(err, dmerrors.ErrEnd) {
			cmdutil.PrintSuccess(fmt.Sprintf("session with %s ended after %d round-trip(s)", driveServerID, round-1))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to compose outbound packet: %w", err)
		}

		reply, err = postPacket(ctx, client, addr, packet.Data)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}

		if err := sess.ProcessReply(ctx, reply); err != nil {
			return fmt.Errorf("round %d: failed to process reply: %w", round, err)
		}
	}
}

func postPacket(ctx context.Context, client *http.Client, addr string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.syncml.dm+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	return data, nil
}
