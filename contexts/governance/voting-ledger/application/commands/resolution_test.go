package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
)

func TestResolveRequiresExpiredDeadline(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	_, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if !errors.Is(err, domainerrors.ErrVotingOpen) {
		t.Fatalf("expected ErrVotingOpen got %v", err)
	}

	// Exactly at the deadline the window is still open.
	f.clock.now = created.EndTime
	_, err = f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if !errors.Is(err, domainerrors.ErrVotingOpen) {
		t.Fatalf("expected ErrVotingOpen at deadline, got %v", err)
	}
}

func TestResolveMajorityPasses(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)
	f.castVote(t, created.ID, "0xbbb", true)
	f.castVote(t, created.ID, "0xccc", false)

	f.clock.Advance(2 * time.Hour)
	resolved, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != entities.StatusAccepted {
		t.Fatalf("expected accepted got %v", resolved.Status)
	}
}

func TestResolveTieDeclines(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)
	f.castVote(t, created.ID, "0xbbb", false)

	f.clock.Advance(2 * time.Hour)
	resolved, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != entities.StatusDeclined {
		t.Fatalf("tie must decline, got %v", resolved.Status)
	}
}

func TestResolveZeroVotesDeclines(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	f.clock.Advance(2 * time.Hour)
	resolved, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != entities.StatusDeclined {
		t.Fatalf("zero votes must decline, got %v", resolved.Status)
	}
}

func TestResolveIsSingleShot(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	f.clock.Advance(2 * time.Hour)
	if _, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	_, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID)
	if !errors.Is(err, domainerrors.ErrProposalNotActive) {
		t.Fatalf("expected ErrProposalNotActive got %v", err)
	}
}

func TestResolveUnknownProposal(t *testing.T) {
	f := newVoteFixture(t)
	_, err := f.resolutions.Resolve(context.Background(), f.capability, 123)
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound got %v", err)
	}
}

func TestResolutionRejectsForeignCapability(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.clock.Advance(2 * time.Hour)
	ctx := context.Background()

	if _, err := f.resolutions.Resolve(ctx, nil, created.ID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("nil capability: expected ErrUnauthorized got %v", err)
	}

	forged := &AdminCapability{}
	if _, err := f.resolutions.Resolve(ctx, forged, created.ID); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("forged capability: expected ErrUnauthorized got %v", err)
	}
	if _, err := f.resolutions.ForceClose(ctx, forged, created.ID, entities.StatusDeclined); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("forged force-close: expected ErrUnauthorized got %v", err)
	}

	// The rejected calls must leave the proposal untouched.
	proposal, found, err := f.store.GetProposal(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if proposal.Status != entities.StatusActive {
		t.Fatalf("status changed by unauthorized caller: %v", proposal.Status)
	}
}

func TestForceCloseBypassesDeadline(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)

	// Window still open; forced close applies the supplied status anyway.
	closed, err := f.resolutions.ForceClose(context.Background(), f.capability, created.ID, entities.StatusDeclined)
	if err != nil {
		t.Fatalf("force close: %v", err)
	}
	if closed.Status != entities.StatusDeclined {
		t.Fatalf("expected declined got %v", closed.Status)
	}

	_, err = f.resolutions.ForceClose(context.Background(), f.capability, created.ID, entities.StatusAccepted)
	if !errors.Is(err, domainerrors.ErrProposalNotActive) {
		t.Fatalf("second force close: expected ErrProposalNotActive got %v", err)
	}
}

func TestForceCloseRejectsNonTerminalStatus(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)

	_, err := f.resolutions.ForceClose(context.Background(), f.capability, created.ID, entities.StatusActive)
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput got %v", err)
	}
}

func TestResolveEmitsStatusUpdatedEvent(t *testing.T) {
	f := newVoteFixture(t)
	created := f.createProposal(t, time.Hour)
	f.castVote(t, created.ID, "0xaaa", true)
	f.clock.Advance(2 * time.Hour)

	if _, err := f.resolutions.Resolve(context.Background(), f.capability, created.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	last := pending[len(pending)-1]
	if last.EventType != "proposal.status_updated" {
		t.Fatalf("expected proposal.status_updated got %s", last.EventType)
	}

	var envelope struct {
		Data struct {
			Status   string `json:"status"`
			YesVotes uint64 `json:"yes_votes"`
			Cause    string `json:"cause"`
		} `json:"data"`
	}
	if err := json.Unmarshal(last.Payload, &envelope); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if envelope.Data.Status != "passed" || envelope.Data.YesVotes != 1 || envelope.Data.Cause != "majority" {
		t.Fatalf("unexpected event payload: %+v", envelope.Data)
	}
}
