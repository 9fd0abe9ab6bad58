package ports

import (
	"context"
	"time"

	contractsv1 "parkpulse/contracts/gen/events/v1"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
)

// ProposalRepository owns the proposal table, the monotonic allocation
// counter, and the ballot tables. Compound mutators (InsertProposal,
// RecordBallot, TransitionStatus) must apply their checks and writes as one
// atomic step so the ledger invariants hold after every call.
type ProposalRepository interface {
	// InsertProposal assigns the next id (counter + 1), persists the proposal,
	// and returns it with the id set. The counter advances only on success.
	InsertProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error)
	GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, bool, error)
	ListActiveProposalIDs(ctx context.Context) ([]uint64, error)
	ListClosedProposalIDs(ctx context.Context) ([]uint64, error)
	// TotalProposals returns the running counter: proposals ever created,
	// not proposals currently active.
	TotalProposals(ctx context.Context) (uint64, error)
	// RecordBallot inserts the ballot and increments the matching tally by
	// exactly one. It fails with ErrAlreadyVoted when a ballot already exists
	// for (proposal, voter) and ErrProposalNotFound for unknown proposals.
	RecordBallot(ctx context.Context, ballot entities.Ballot) (entities.Proposal, error)
	// TransitionStatus moves an Active proposal to a terminal status. It fails
	// with ErrProposalNotActive when the proposal is already resolved.
	TransitionStatus(ctx context.Context, proposalID uint64, to entities.ProposalStatus, updatedAt time.Time) (entities.Proposal, error)
}

// BallotRegistry answers per-voter eligibility queries. Absence of a ballot
// reads as "has not voted".
type BallotRegistry interface {
	HasVoted(ctx context.Context, proposalID uint64, voter string) (bool, error)
	GetBallot(ctx context.Context, proposalID uint64, voter string) (entities.Ballot, bool, error)
}

// EventEnvelope is the canonical cross-runtime event shape.
type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ProposalNotice is the notification payload for newly created proposals.
type ProposalNotice struct {
	ProposalID  uint64
	ParkName    string
	EndTime     time.Time
	Description string
}

type ProposalNotifier interface {
	SendProposalNotice(ctx context.Context, notice ProposalNotice) error
}
