package workers

import (
	"context"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/adapters/memory"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

type capturingNotifier struct {
	notices []ports.ProposalNotice
}

func (n *capturingNotifier) SendProposalNotice(_ context.Context, notice ports.ProposalNotice) error {
	n.notices = append(n.notices, notice)
	return nil
}

func proposalCreatedEnvelope(eventID string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:    eventID,
		EventType:  "proposal.created",
		OccurredAt: baseTime,
		Data:       []byte(`{"proposal_id":7,"park_name":"Riverside Park","end_time":"2026-03-04T12:00:00Z","description":"NDVI drop"}`),
	}
}

func TestAnnouncerSendsOneNoticePerEvent(t *testing.T) {
	store := memory.NewStore(nil)
	notifier := &capturingNotifier{}
	clock := &fakeClock{now: baseTime}
	announcer := ProposalAnnouncer{
		Dedup:    store,
		Notifier: notifier,
		Clock:    clock,
	}
	ctx := context.Background()

	event := proposalCreatedEnvelope("evt-1")
	if err := announcer.handleProposalCreated(ctx, event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Redelivery of the same event must not notify twice.
	if err := announcer.handleProposalCreated(ctx, event); err != nil {
		t.Fatalf("handle replay: %v", err)
	}

	if len(notifier.notices) != 1 {
		t.Fatalf("expected 1 notice got %d", len(notifier.notices))
	}
	notice := notifier.notices[0]
	if notice.ProposalID != 7 || notice.ParkName != "Riverside Park" {
		t.Fatalf("unexpected notice %+v", notice)
	}
	wantEnd := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	if !notice.EndTime.Equal(wantEnd) {
		t.Fatalf("unexpected end time %v", notice.EndTime)
	}
}

func TestAnnouncerDistinctEventsBothNotify(t *testing.T) {
	store := memory.NewStore(nil)
	notifier := &capturingNotifier{}
	announcer := ProposalAnnouncer{
		Dedup:    store,
		Notifier: notifier,
		Clock:    &fakeClock{now: baseTime},
	}
	ctx := context.Background()

	if err := announcer.handleProposalCreated(ctx, proposalCreatedEnvelope("evt-1")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := announcer.handleProposalCreated(ctx, proposalCreatedEnvelope("evt-2")); err != nil {
		t.Fatalf("second: %v", err)
	}
	if len(notifier.notices) != 2 {
		t.Fatalf("expected 2 notices got %d", len(notifier.notices))
	}
}
