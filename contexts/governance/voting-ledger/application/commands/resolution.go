package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	application "parkpulse/contexts/governance/voting-ledger/application"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

// AdminCapability is the unforgeable credential gating resolution operations.
// Exactly one is issued per ledger, at module construction; holders pass it
// back on privileged calls and authorization compares pointer identity.
type AdminCapability struct {
	_ [0]func()
}

// ResolutionUseCase closes proposals: normal majority resolution after the
// deadline, or forced administrative override.
type ResolutionUseCase struct {
	Proposals ports.ProposalRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	WriteLock *sync.Mutex
	Logger    *slog.Logger

	issued *AdminCapability
}

// NewResolutionUseCase issues the single admin capability and binds it to the
// returned use case.
func NewResolutionUseCase(
	proposals ports.ProposalRepository,
	outbox ports.OutboxWriter,
	clock ports.Clock,
	idGen ports.IDGenerator,
	writeLock *sync.Mutex,
	logger *slog.Logger,
) (ResolutionUseCase, *AdminCapability) {
	capability := &AdminCapability{}
	return ResolutionUseCase{
		Proposals: proposals,
		Outbox:    outbox,
		Clock:     clock,
		IDGen:     idGen,
		WriteLock: writeLock,
		Logger:    logger,
		issued:    capability,
	}, capability
}

// Resolve closes a proposal whose deadline has passed, computing the outcome
// from the tallies. A tie declines; a second resolution attempt fails with
// ErrProposalNotActive.
func (uc ResolutionUseCase) Resolve(ctx context.Context, capability *AdminCapability, proposalID uint64) (entities.Proposal, error) {
	if err := uc.authorize(capability); err != nil {
		return entities.Proposal{}, err
	}

	uc.lock()
	defer uc.unlock()

	proposal, found, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !found {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if proposal.Status != entities.StatusActive {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}

	now := uc.now()
	if !now.After(proposal.EndTime) {
		return entities.Proposal{}, domainerrors.ErrVotingOpen
	}

	return uc.transition(ctx, proposal, proposal.Outcome(), now, "majority")
}

// ForceClose bypasses the deadline check and sets the supplied terminal
// status directly. Administrative override for invalid or abusive proposals.
func (uc ResolutionUseCase) ForceClose(
	ctx context.Context,
	capability *AdminCapability,
	proposalID uint64,
	to entities.ProposalStatus,
) (entities.Proposal, error) {
	if err := uc.authorize(capability); err != nil {
		return entities.Proposal{}, err
	}
	if !to.Terminal() {
		return entities.Proposal{}, domainerrors.ErrInvalidInput
	}

	uc.lock()
	defer uc.unlock()

	proposal, found, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if !found {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if proposal.Status != entities.StatusActive {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}

	return uc.transition(ctx, proposal, to, uc.now(), "forced")
}

func (uc ResolutionUseCase) transition(
	ctx context.Context,
	proposal entities.Proposal,
	to entities.ProposalStatus,
	now time.Time,
	cause string,
) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)

	updated, err := uc.Proposals.TransitionStatus(ctx, proposal.ID, to, now)
	if err != nil {
		return entities.Proposal{}, err
	}

	if err := uc.appendEvent(ctx, now, updated, cause); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal resolved",
		"event", "ledger_proposal_resolved",
		"module", "governance/voting-ledger",
		"layer", "application",
		"proposal_id", updated.ID,
		"status", updated.Status.String(),
		"yes_votes", updated.YesVotes,
		"no_votes", updated.NoVotes,
		"cause", cause,
	)
	return updated, nil
}

func (uc ResolutionUseCase) appendEvent(ctx context.Context, occurredAt time.Time, proposal entities.Proposal, cause string) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, "proposal.status_updated", proposal.ID, occurredAt, map[string]any{
		"proposal_id": proposal.ID,
		"status":      proposal.Status.String(),
		"yes_votes":   proposal.YesVotes,
		"no_votes":    proposal.NoVotes,
		"cause":       cause,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ResolutionUseCase) authorize(capability *AdminCapability) error {
	if capability == nil || capability != uc.issued {
		logger := application.ResolveLogger(uc.Logger)
		logger.Warn("resolution rejected for unauthorized caller",
			"event", "ledger_resolution_unauthorized",
			"module", "governance/voting-ledger",
			"layer", "application",
		)
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func (uc ResolutionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ResolutionUseCase) lock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Lock()
	}
}

func (uc ResolutionUseCase) unlock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Unlock()
	}
}
