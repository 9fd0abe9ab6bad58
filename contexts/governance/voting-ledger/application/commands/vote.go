package commands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "parkpulse/contexts/governance/voting-ledger/application"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

// CastVoteCommand is the write-model input for casting a single ballot.
type CastVoteCommand struct {
	ProposalID uint64
	Voter      string
	Choice     bool
}

// CastVoteResult returns the proposal after the tally increment together with
// the recorded ballot.
type CastVoteResult struct {
	Proposal entities.Proposal
	Ballot   entities.Ballot
}

// VoteUseCase applies one vote per identity per proposal. Check order fixes
// the error precedence: existence before duplication, duplication before
// activity and deadline.
type VoteUseCase struct {
	Proposals ports.ProposalRepository
	Ballots   ports.BallotRegistry
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	WriteLock *sync.Mutex
	Logger    *slog.Logger
}

// CastVote validates and applies a single ballot, increments the matching
// tally by exactly one, and emits vote.cast. A ballot, once recorded, is
// final.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" {
		logger.Warn("vote cast validation failed",
			"event", "ledger_vote_cast_validation_failed",
			"module", "governance/voting-ledger",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidInput
	}

	uc.lock()
	defer uc.unlock()

	proposal, found, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		return CastVoteResult{}, domainerrors.ErrProposalNotFound
	}

	if voted, err := uc.Ballots.HasVoted(ctx, cmd.ProposalID, voter); err != nil {
		return CastVoteResult{}, err
	} else if voted {
		logger.Warn("duplicate ballot rejected",
			"event", "ledger_vote_cast_duplicate",
			"module", "governance/voting-ledger",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"voter", voter,
		)
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	if proposal.Status != entities.StatusActive {
		return CastVoteResult{}, domainerrors.ErrProposalNotActive
	}

	now := uc.now()
	if now.After(proposal.EndTime) {
		return CastVoteResult{}, domainerrors.ErrVotingClosed
	}

	ballot := entities.Ballot{
		ProposalID: cmd.ProposalID,
		Voter:      voter,
		Choice:     cmd.Choice,
		CastAt:     now,
	}
	updated, err := uc.Proposals.RecordBallot(ctx, ballot)
	if err != nil {
		return CastVoteResult{}, err
	}

	if err := uc.appendEvent(ctx, now, ballot); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "ledger_vote_cast",
		"module", "governance/voting-ledger",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"voter", voter,
		"choice", cmd.Choice,
		"yes_votes", updated.YesVotes,
		"no_votes", updated.NoVotes,
	)
	return CastVoteResult{Proposal: updated, Ballot: ballot}, nil
}

func (uc VoteUseCase) appendEvent(ctx context.Context, occurredAt time.Time, ballot entities.Ballot) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, "vote.cast", ballot.ProposalID, occurredAt, map[string]any{
		"proposal_id": ballot.ProposalID,
		"voter":       ballot.Voter,
		"choice":      ballot.Choice,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteUseCase) lock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Lock()
	}
}

func (uc VoteUseCase) unlock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Unlock()
	}
}
