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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCreateUseCase(store *memory.Store, clock *fakeClock) ProposalUseCase {
	return ProposalUseCase{
		Proposals: store,
		Outbox:    store,
		Clock:     clock,
		IDGen:     store,
		WriteLock: &sync.Mutex{},
	}
}

func validCreateCommand(clock *fakeClock) CreateProposalCommand {
	return CreateProposalCommand{
		ParkName: "Riverside Park",
		ParkID:   "park-001",
		Creator:  "0xcreator",
		EndTime:  clock.now.Add(72 * time.Hour),
		Environmental: entities.EnvironmentalData{
			NDVIBefore:          0.62,
			NDVIAfter:           0.31,
			PM25IncreasePercent: 18.5,
		},
		Demographics: entities.Demographics{
			Children:                1200,
			Adults:                  5400,
			Seniors:                 800,
			TotalAffectedPopulation: 7400,
		},
	}
}

func TestCreateProposalStartsActiveWithZeroTallies(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fakeClock{now: baseTime}
	uc := newCreateUseCase(store, clock)

	created, err := uc.CreateProposal(context.Background(), validCreateCommand(clock))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected id 1 got %d", created.ID)
	}
	if created.Status != entities.StatusActive {
		t.Fatalf("expected active status got %v", created.Status)
	}
	if created.YesVotes != 0 || created.NoVotes != 0 {
		t.Fatalf("expected zero tallies got %d/%d", created.YesVotes, created.NoVotes)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "proposal.created" {
		t.Fatalf("expected one proposal.created event, got %v", pending)
	}
}

func TestCreateProposalRejectsInvalidInput(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fakeClock{now: baseTime}
	uc := newCreateUseCase(store, clock)
	ctx := context.Background()

	cases := map[string]func(*CreateProposalCommand){
		"empty park name":  func(cmd *CreateProposalCommand) { cmd.ParkName = "  " },
		"empty park id":    func(cmd *CreateProposalCommand) { cmd.ParkID = "" },
		"empty creator":    func(cmd *CreateProposalCommand) { cmd.Creator = "" },
		"deadline in past": func(cmd *CreateProposalCommand) { cmd.EndTime = clock.now.Add(-time.Minute) },
		"deadline is now":  func(cmd *CreateProposalCommand) { cmd.EndTime = clock.now },
		"zero deadline":    func(cmd *CreateProposalCommand) { cmd.EndTime = time.Time{} },
	}
	for name, mutate := range cases {
		cmd := validCreateCommand(clock)
		mutate(&cmd)
		if _, err := uc.CreateProposal(ctx, cmd); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput got %v", name, err)
		}
	}

	// Failed creates must not advance the counter or emit events.
	total, err := store.TotalProposals(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Fatalf("counter advanced on invalid input: %d", total)
	}
	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("events emitted on invalid input: %d", len(pending))
	}
}

func TestAnnounceInitializedReportsTotal(t *testing.T) {
	store := memory.NewStore(nil)
	clock := &fakeClock{now: baseTime}
	uc := newCreateUseCase(store, clock)
	ctx := context.Background()

	if _, err := uc.CreateProposal(ctx, validCreateCommand(clock)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := uc.AnnounceInitialized(ctx); err != nil {
		t.Fatalf("announce: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 2 || pending[1].EventType != "ledger.initialized" {
		t.Fatalf("expected ledger.initialized after proposal.created, got %v", pending)
	}
}
