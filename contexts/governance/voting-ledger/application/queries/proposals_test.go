package queries

import (
	"context"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/adapters/memory"
	"parkpulse/contexts/governance/voting-ledger/domain/entities"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) (*memory.Store, entities.Proposal) {
	t.Helper()
	store := memory.NewStore(nil)
	created, err := store.InsertProposal(context.Background(), entities.Proposal{
		ParkName: "Riverside Park",
		ParkID:   "park-001",
		Creator:  "0xcreator",
		EndTime:  baseTime.Add(time.Hour),
		Status:   entities.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	return store, created
}

func TestVoteCountsReflectBallots(t *testing.T) {
	store, created := seedStore(t)
	ctx := context.Background()
	uc := ProposalQueries{Proposals: store, Ballots: store}

	for _, ballot := range []entities.Ballot{
		{ProposalID: created.ID, Voter: "0xaaa", Choice: true, CastAt: baseTime},
		{ProposalID: created.ID, Voter: "0xbbb", Choice: true, CastAt: baseTime},
		{ProposalID: created.ID, Voter: "0xccc", Choice: false, CastAt: baseTime},
	} {
		if _, err := store.RecordBallot(ctx, ballot); err != nil {
			t.Fatalf("record %s: %v", ballot.Voter, err)
		}
	}

	counts, found, err := uc.VoteCounts(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("counts: found=%v err=%v", found, err)
	}
	if counts.Yes != 2 || counts.No != 1 {
		t.Fatalf("unexpected counts %d/%d", counts.Yes, counts.No)
	}

	if _, found, err := uc.VoteCounts(ctx, 99); err != nil || found {
		t.Fatalf("unknown proposal: found=%v err=%v", found, err)
	}
}

func TestUserVoteLookup(t *testing.T) {
	store, created := seedStore(t)
	ctx := context.Background()
	uc := ProposalQueries{Proposals: store, Ballots: store}

	if _, err := store.RecordBallot(ctx, entities.Ballot{
		ProposalID: created.ID, Voter: "0xaaa", Choice: false, CastAt: baseTime,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	choice, found, err := uc.UserVote(ctx, created.ID, "0xaaa")
	if err != nil || !found {
		t.Fatalf("user vote: found=%v err=%v", found, err)
	}
	if choice {
		t.Fatal("expected recorded no vote")
	}

	if _, found, err := uc.UserVote(ctx, created.ID, "0xzzz"); err != nil || found {
		t.Fatalf("non-voter: found=%v err=%v", found, err)
	}

	voted, err := uc.HasUserVoted(ctx, created.ID, " 0xaaa ")
	if err != nil {
		t.Fatalf("has voted: %v", err)
	}
	if !voted {
		t.Fatal("trimmed voter lookup missed the ballot")
	}
}

func TestIsProposalActiveHonorsStatusAndDeadline(t *testing.T) {
	store, created := seedStore(t)
	ctx := context.Background()
	clock := &fakeClock{now: baseTime}
	uc := ProposalQueries{Proposals: store, Ballots: store, Clock: clock}

	active, err := uc.IsProposalActive(ctx, created.ID)
	if err != nil || !active {
		t.Fatalf("inside window: active=%v err=%v", active, err)
	}

	// At the deadline the proposal is still active; just past it, it is not,
	// even before anyone resolves it.
	clock.now = created.EndTime
	if active, _ := uc.IsProposalActive(ctx, created.ID); !active {
		t.Fatal("expected active at exact deadline")
	}
	clock.now = created.EndTime.Add(time.Second)
	if active, _ := uc.IsProposalActive(ctx, created.ID); active {
		t.Fatal("expected inactive past deadline")
	}

	if active, err := uc.IsProposalActive(ctx, 99); err != nil || active {
		t.Fatalf("unknown proposal: active=%v err=%v", active, err)
	}
}

func TestListActiveProposalsResolvesDetails(t *testing.T) {
	store, created := seedStore(t)
	ctx := context.Background()
	uc := ProposalQueries{Proposals: store, Ballots: store}

	second, err := store.InsertProposal(ctx, entities.Proposal{
		ParkName: "Hilltop Park",
		ParkID:   "park-002",
		Creator:  "0xcreator",
		EndTime:  baseTime.Add(2 * time.Hour),
		Status:   entities.StatusActive,
	})
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if _, err := store.TransitionStatus(ctx, created.ID, entities.StatusDeclined, baseTime); err != nil {
		t.Fatalf("transition: %v", err)
	}

	items, err := uc.ListActiveProposals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != second.ID || items[0].ParkName != "Hilltop Park" {
		t.Fatalf("unexpected active list: %+v", items)
	}

	closed, err := uc.ListClosedProposalIDs(ctx)
	if err != nil {
		t.Fatalf("closed ids: %v", err)
	}
	if len(closed) != 1 || closed[0] != created.ID {
		t.Fatalf("unexpected closed ids: %v", closed)
	}
}
