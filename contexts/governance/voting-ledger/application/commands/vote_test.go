package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/adapters/memory"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
)

type voteFixture struct {
	store       *memory.Store
	clock       *fakeClock
	creates     ProposalUseCase
	votes       VoteUseCase
	resolutions ResolutionUseCase
	capability  *AdminCapability
}

func newVoteFixture(t *testing.T) *voteFixture {
	t.Helper()
	store := memory.NewStore(nil)
	clock := &fakeClock{now: baseTime}
	lock := &sync.Mutex{}

	resolutions, capability := NewResolutionUseCase(store, store, clock, store, lock, nil)
	return &voteFixture{
		store: store,
		clock: clock,
		creates: ProposalUseCase{
			Proposals: store,
			Outbox:    store,
			Clock:     clock,
			IDGen:     store,
			WriteLock: lock,
		},
		votes: VoteUseCase{
			Proposals: store,
			Ballots:   store,
			Outbox:    store,
			Clock:     clock,
			IDGen:     store,
			WriteLock: lock,
		},
		resolutions: resolutions,
		capability:  capability,
	}
}

func (f *voteFixture) createProposal(t *testing.T, window time.Duration) entities.Proposal {
	t.Helper()
	cmd := validCreateCommand(f.clock)
	cmd.EndTime = f.clock.now.Add(window)
	created, err := f.creates.CreateProposal(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return created
}

func (f *voteFixture) castVote(t *testing.T, proposalID uint64, voter string, choice bool) CastVoteResult {
	t.Helper()
	result, err := f.votes.CastVote(context.Background(), CastVoteCommand{
		ProposalID: proposalID,
		Voter:      voter,
		Choice:     choice,
	})
	if err != nil {
		t.Fatalf("cast vote %s: %v", voter, err)
	}
	return result
}

func TestCastVoteIncrementsExactlyOneTally(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, 72*time.Hour)

	yes := f.castVote(t, created.ID, "0xaaa", true)
	if yes.Proposal.YesVotes != 1 || yes.Proposal.NoVotes != 0 {
		t.Fatalf("after yes vote: %d/%d", yes.Proposal.YesVotes, yes.Proposal.NoVotes)
	}

	no := f.castVote(t, created.ID, "0xbbb", false)
	if no.Proposal.YesVotes != 1 || no.Proposal.NoVotes != 1 {
		t.Fatalf("after no vote: %d/%d", no.Proposal.YesVotes, no.Proposal.NoVotes)
	}

	// yes + no must equal recorded ballots.
	if count := f.store.BallotCount(created.ID); uint64(count) != no.Proposal.YesVotes+no.Proposal.NoVotes {
		t.Fatalf("tally/ballot mismatch: %d ballots vs %d+%d",
			count, no.Proposal.YesVotes, no.Proposal.NoVotes)
	}
}

func TestCastVoteErrorPrecedence(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	// Unknown proposal outranks everything.
	_, err := f.votes.CastVote(ctx, CastVoteCommand{ProposalID: 99, Voter: "0xaaa"})
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound got %v", err)
	}

	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)

	// Duplicate identity outranks the deadline: even after the window closes,
	// a repeat voter sees AlreadyVoted.
	f.clock.Advance(2 * time.Hour)
	_, err = f.votes.CastVote(ctx, CastVoteCommand{ProposalID: created.ID, Voter: "0xaaa", Choice: false})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted got %v", err)
	}

	// Fresh identity after the deadline sees VotingClosed.
	_, err = f.votes.CastVote(ctx, CastVoteCommand{ProposalID: created.ID, Voter: "0xbbb", Choice: true})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed got %v", err)
	}

	// Resolved proposal outranks the deadline for fresh identities.
	if _, err := f.resolutions.Resolve(ctx, f.capability, created.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_, err = f.votes.CastVote(ctx, CastVoteCommand{ProposalID: created.ID, Voter: "0xccc", Choice: true})
	if !errors.Is(err, domainerrors.ErrProposalNotActive) {
		t.Fatalf("expected ErrProposalNotActive got %v", err)
	}
}

func TestCastVoteAtExactDeadlineIsAccepted(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	// now == EndTime still counts; only now > EndTime closes the window.
	f.clock.now = created.EndTime
	result := f.castVote(t, created.ID, "0xaaa", true)
	if result.Proposal.YesVotes != 1 {
		t.Fatalf("vote at deadline not counted: %d", result.Proposal.YesVotes)
	}

	f.clock.Advance(time.Nanosecond)
	_, err := f.votes.CastVote(context.Background(), CastVoteCommand{
		ProposalID: created.ID,
		Voter:      "0xbbb",
		Choice:     true,
	})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed just past deadline, got %v", err)
	}
}

func TestCastVoteRejectsBlankVoter(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	_, err := f.votes.CastVote(context.Background(), CastVoteCommand{
		ProposalID: created.ID,
		Voter:      "   ",
		Choice:     true,
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

func TestCastVoteEmitsVoteCastEvent(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 events got %d", len(pending))
	}
	if pending[1].EventType != "vote.cast" {
		t.Fatalf("expected vote.cast got %s", pending[1].EventType)
	}
}
