package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "parkpulse/contexts/governance/voting-ledger/application"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

const (
	proposalCreatedTopic = "proposal.created"
	defaultAnnouncerCG   = "voting-ledger-announcer-cg"
)

// ProposalAnnouncer consumes proposal.created and sends one notification per
// new proposal through the notifier. Replays are dropped by the dedup store.
type ProposalAnnouncer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Notifier      ports.ProposalNotifier
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (a ProposalAnnouncer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	if a.Disabled {
		logger.Info("proposal announcer disabled by feature flag",
			"event", "ledger_announcer_disabled",
			"module", "governance/voting-ledger",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(a.ConsumerGroup)
	if group == "" {
		group = defaultAnnouncerCG
	}
	if err := a.Subscriber.Subscribe(ctx, proposalCreatedTopic, group, a.handleProposalCreated); err != nil {
		logger.Error("proposal announcer subscribe failed",
			"event", "ledger_announcer_subscribe_failed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"topic", proposalCreatedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("proposal announcer subscription active",
		"event", "ledger_announcer_started",
		"module", "governance/voting-ledger",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (a ProposalAnnouncer) handleProposalCreated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(a.Logger)

	alreadyProcessed, err := a.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), a.now().Add(a.dedupTTL()))
	if err != nil {
		logger.Error("proposal announcer dedupe failed",
			"event", "ledger_announcer_dedupe_failed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("proposal.created replay skipped",
			"event", "ledger_announcer_replayed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		ProposalID  uint64 `json:"proposal_id"`
		ParkName    string `json:"park_name"`
		EndTime     string `json:"end_time"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("proposal.created payload decode failed",
			"event", "ledger_announcer_decode_failed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	endTime, _ := time.Parse(time.RFC3339, payload.EndTime)

	notice := ports.ProposalNotice{
		ProposalID:  payload.ProposalID,
		ParkName:    payload.ParkName,
		EndTime:     endTime,
		Description: payload.Description,
	}
	if err := a.Notifier.SendProposalNotice(ctx, notice); err != nil {
		logger.Error("proposal notice send failed",
			"event", "ledger_announcer_send_failed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"event_id", event.EventID,
			"proposal_id", payload.ProposalID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("proposal.created consumed",
		"event", "ledger_announcer_consumed",
		"module", "governance/voting-ledger",
		"layer", "worker",
		"event_id", event.EventID,
		"proposal_id", payload.ProposalID,
	)
	return nil
}

func (a ProposalAnnouncer) now() time.Time {
	now := time.Now().UTC()
	if a.Clock != nil {
		now = a.Clock.Now().UTC()
	}
	return now
}

func (a ProposalAnnouncer) dedupTTL() time.Duration {
	if a.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return a.DedupTTL
}
