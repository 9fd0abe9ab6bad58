package queries

import (
	"context"
	"strings"
	"time"

	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

// ProposalQueries is the pure read surface over the ledger. No query mutates
// state.
type ProposalQueries struct {
	Proposals ports.ProposalRepository
	Ballots   ports.BallotRegistry
	Clock     ports.Clock
}

func (uc ProposalQueries) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, bool, error) {
	return uc.Proposals.GetProposal(ctx, proposalID)
}

// VoteCounts returns the tally pair, or found=false for unknown proposals.
func (uc ProposalQueries) VoteCounts(ctx context.Context, proposalID uint64) (entities.VoteCounts, bool, error) {
	proposal, found, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil || !found {
		return entities.VoteCounts{}, found, err
	}
	return entities.VoteCounts{Yes: proposal.YesVotes, No: proposal.NoVotes}, true, nil
}

// UserVote returns the recorded choice for (proposal, voter), or found=false
// when the identity has not voted.
func (uc ProposalQueries) UserVote(ctx context.Context, proposalID uint64, voter string) (bool, bool, error) {
	ballot, found, err := uc.Ballots.GetBallot(ctx, proposalID, strings.TrimSpace(voter))
	if err != nil || !found {
		return false, found, err
	}
	return ballot.Choice, true, nil
}

func (uc ProposalQueries) HasUserVoted(ctx context.Context, proposalID uint64, voter string) (bool, error) {
	return uc.Ballots.HasVoted(ctx, proposalID, strings.TrimSpace(voter))
}

// IsProposalActive reports status Active and deadline not yet exceeded.
// Unknown proposals read as inactive.
func (uc ProposalQueries) IsProposalActive(ctx context.Context, proposalID uint64) (bool, error) {
	proposal, found, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil || !found {
		return false, err
	}
	return proposal.ActiveAt(uc.now()), nil
}

func (uc ProposalQueries) ListActiveProposalIDs(ctx context.Context) ([]uint64, error) {
	return uc.Proposals.ListActiveProposalIDs(ctx)
}

func (uc ProposalQueries) ListClosedProposalIDs(ctx context.Context) ([]uint64, error) {
	return uc.Proposals.ListClosedProposalIDs(ctx)
}

// ListActiveProposals resolves active ids to full proposals for listing
// endpoints.
func (uc ProposalQueries) ListActiveProposals(ctx context.Context) ([]entities.Proposal, error) {
	ids, err := uc.Proposals.ListActiveProposalIDs(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Proposal, 0, len(ids))
	for _, id := range ids {
		proposal, found, err := uc.Proposals.GetProposal(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			items = append(items, proposal)
		}
	}
	return items, nil
}

func (uc ProposalQueries) TotalProposals(ctx context.Context) (uint64, error) {
	return uc.Proposals.TotalProposals(ctx)
}

func (uc ProposalQueries) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
