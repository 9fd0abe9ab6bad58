package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/adapters/memory"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

type capturingPublisher struct {
	published []ports.EventEnvelope
	failAfter int
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	if p.failAfter > 0 && len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string, occurredAt time.Time) {
	t.Helper()
	err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:    eventID,
		EventType:  "proposal.created",
		OccurredAt: occurredAt,
		Data:       []byte(`{"proposal_id":1}`),
	})
	if err != nil {
		t.Fatalf("append %s: %v", eventID, err)
	}
}

func TestOutboxRelayPublishesInOrderAndMarksRows(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	ctx := context.Background()

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		appendEnvelope(t, store, id, baseTime)
	}

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.published) != 3 {
		t.Fatalf("expected 3 published got %d", len(publisher.published))
	}
	for i, want := range []string{"evt-1", "evt-2", "evt-3"} {
		if publisher.published[i].EventID != want {
			t.Fatalf("published[%d] = %s want %s", i, publisher.published[i].EventID, want)
		}
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("rows left pending after relay: %d", len(pending))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &capturingPublisher{failAfter: 1}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	ctx := context.Background()

	appendEnvelope(t, store, "evt-1", baseTime)
	appendEnvelope(t, store, "evt-2", baseTime)

	if err := relay.RunOnce(ctx); err == nil {
		t.Fatal("expected relay error")
	}

	// The failed row stays pending for the next cycle.
	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "evt-2" {
		t.Fatalf("unexpected pending rows: %v", pending)
	}
}
