package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"parkpulse/contexts/governance/voting-ledger/ports"
)

// newLedgerEnvelope builds canonical envelopes for command-side events.
// Events are partitioned by proposal for stable ordering on proposal-scoped
// consumers.
func newLedgerEnvelope(
	eventID string,
	eventType string,
	proposalID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "voting-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "proposal_id",
		PartitionKey:     strconv.FormatUint(proposalID, 10),
		Data:             payload,
	}, nil
}
