package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oma-dm/goclient/internal/dmconfig"
	"github.com/oma-dm/goclient/internal/dmerrors"
	"github.com/oma-dm/goclient/internal/logger"
	"github.com/oma-dm/goclient/pkg/dmtree"
	"github.com/oma-dm/goclient/pkg/metrics"
	prometheusmetrics "github.com/oma-dm/goclient/pkg/metrics/prometheus"
	"github.com/oma-dm/goclient/pkg/mo/devinfo"
	"github.com/oma-dm/goclient/pkg/mo/dmacc"
	"github.com/oma-dm/goclient/pkg/mo/persistent"
	pkgsession "github.com/oma-dm/goclient/pkg/session"
	"github.com/oma-dm/goclient/pkg/syncml"
)

// TriggerHandler accepts a raw Package 0 payload over HTTP and drives the
// resulting session to completion in the background: the caller that
// delivered the trigger gets an immediate acknowledgement rather than
// blocking for the full conversation.
type TriggerHandler struct {
	cfg *dmconfig.Config
}

// NewTriggerHandler builds a TriggerHandler seeded from cfg.
func NewTriggerHandler(cfg *dmconfig.Config) *TriggerHandler {
	return &TriggerHandler{cfg: cfg}
}

func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	pkt, err := syncml.DecodePackage0(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid Package 0 payload: %v", err), http.StatusBadRequest)
		return
	}

	correlator := uuid.NewString()
	logger.Info("Package 0 trigger received",
		"correlator", correlator, "server_id", pkt.ServerID, "session_id", pkt.SessionID)

	addr, ok := h.lookupAddr(pkt.ServerID)
	if !ok {
		http.Error(w, fmt.Sprintf("no account configured for server %q", pkt.ServerID), http.StatusBadRequest)
		return
	}

	// Run the conversation in the background so the pushing party (the
	// server, or whatever transport delivered the trigger) is not held
	// open for the whole session.
	go h.drive(correlator, pkt.ServerID, addr, body)

	w.Header().Set("X-Correlator", correlator)
	w.WriteHeader(http.StatusAccepted)
}

func (h *TriggerHandler) drive(correlator, serverID, addr string, pkg0 []byte) {
	ctx := context.Background()
	log := func(msg string, args ...any) {
		logger.Info(msg, append([]any{"correlator", correlator}, args...)...)
	}

	tree, err := h.buildTree(ctx)
	if err != nil {
		logger.Error("agent: failed to build DMTree", "correlator", correlator, "error", err)
		return
	}
	defer func() { _ = tree.Close(ctx) }()

	var sessionMetrics metrics.SessionMetrics
	if h.cfg.Metrics.Enabled {
		metrics.InitRegistry()
		sessionMetrics = prometheusmetrics.NewSessionMetrics()
	}

	sess := pkgsession.New(tree, sessionMetrics)
	if _, _, err := sess.SessionStartOnAlert(ctx, pkg0); err != nil {
		logger.Error("agent: failed to start session from trigger", "correlator", correlator, "error", err)
		return
	}
	defer func() { _ = sess.SessionClose(ctx) }()

	client := &http.Client{Timeout: 30 * time.Second}

	var reply []byte
	for round := 1; ; round++ {
		packet, err := sess.GetNextPacket(ctx)
		if errors.Is(err, dmerrors.ErrEnd) {
			log("session driven to completion", "server_id", serverID, "rounds", round-1)
			return
		}
		if err != nil {
			logger.Error("agent: failed to compose outbound packet", "correlator", correlator, "error", err)
			return
		}

		reply, err = postPacket(ctx, client, addr, packet.Data)
		if err != nil {
			logger.Error("agent: transport round-trip failed", "correlator", correlator, "round", round, "error", err)
			return
		}

		if err := sess.ProcessReply(ctx, reply); err != nil {
			logger.Error("agent: failed to process reply", "correlator", correlator, "round", round, "error", err)
			return
		}
	}
}

func (h *TriggerHandler) buildTree(ctx context.Context) (*dmtree.Tree, error) {
	tree := dmtree.New()
	if err := tree.AddPlugin(ctx, devinfo.New(h.cfg.DevInfo())); err != nil {
		return nil, err
	}
	if err := tree.AddPlugin(ctx, dmacc.New(h.cfg.AccountSeeds())); err != nil {
		return nil, err
	}
	if h.cfg.Persistent.Enabled {
		if err := tree.AddPlugin(ctx, persistent.New(h.cfg.PersistentMOConfig())); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (h *TriggerHandler) lookupAddr(serverID string) (addr string, ok bool) {
	for _, a := range h.cfg.Accounts {
		if a.ServerID == serverID {
			return a.Addr, true
		}
	}
	return "", false
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
