package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"parkpulse/contexts/governance/voting-ledger/domain/entities"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	"parkpulse/contexts/governance/voting-ledger/ports"

	"github.com/google/uuid"
)

type ballotKey struct {
	proposalID uint64
	voter      string
}

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store is the in-memory ledger: proposal table, ballot table keyed by
// (proposal, voter), the monotonic counter, and the outbox. One mutex guards
// every compound mutation so each repository call is a single atomic step.
type Store struct {
	mu sync.RWMutex

	counter   uint64
	proposals map[uint64]entities.Proposal
	order     []uint64
	ballots   map[ballotKey]entities.Ballot

	outbox     map[string]outboxRecord
	outboxSeq  uint64
	eventDedup map[string]dedupRecord
}

func NewStore(seed []entities.Proposal) *Store {
	proposals := make(map[uint64]entities.Proposal, len(seed))
	order := make([]uint64, 0, len(seed))
	var counter uint64
	for _, proposal := range seed {
		proposals[proposal.ID] = proposal
		order = append(order, proposal.ID)
		if proposal.ID > counter {
			counter = proposal.ID
		}
	}
	return &Store{
		counter:    counter,
		proposals:  proposals,
		order:      order,
		ballots:    make(map[ballotKey]entities.Ballot),
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) InsertProposal(_ context.Context, proposal entities.Proposal) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	proposal.ID = s.counter
	s.proposals[proposal.ID] = proposal
	s.order = append(s.order, proposal.ID)
	return proposal, nil
}

func (s *Store) GetProposal(_ context.Context, proposalID uint64) (entities.Proposal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	return proposal, ok, nil
}

func (s *Store) ListActiveProposalIDs(_ context.Context) ([]uint64, error) {
	return s.listByStatus(true), nil
}

func (s *Store) ListClosedProposalIDs(_ context.Context) ([]uint64, error) {
	return s.listByStatus(false), nil
}

// listByStatus walks insertion order so results are deterministic for a
// fixed state.
func (s *Store) listByStatus(active bool) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, 0)
	for _, id := range s.order {
		proposal, ok := s.proposals[id]
		if !ok {
			continue
		}
		if (proposal.Status == entities.StatusActive) == active {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Store) TotalProposals(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter, nil
}

func (s *Store) RecordBallot(_ context.Context, ballot entities.Ballot) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[ballot.ProposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	key := ballotKey{proposalID: ballot.ProposalID, voter: strings.TrimSpace(ballot.Voter)}
	if _, exists := s.ballots[key]; exists {
		return entities.Proposal{}, domainerrors.ErrAlreadyVoted
	}

	s.ballots[key] = ballot
	if ballot.Choice {
		proposal.YesVotes++
	} else {
		proposal.NoVotes++
	}
	proposal.UpdatedAt = ballot.CastAt.UTC()
	s.proposals[ballot.ProposalID] = proposal
	return proposal, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	proposalID uint64,
	to entities.ProposalStatus,
	updatedAt time.Time,
) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if proposal.Status != entities.StatusActive {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}

	proposal.Status = to
	proposal.UpdatedAt = updatedAt.UTC()
	s.proposals[proposalID] = proposal
	return proposal, nil
}

func (s *Store) HasVoted(_ context.Context, proposalID uint64, voter string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ballots[ballotKey{proposalID: proposalID, voter: strings.TrimSpace(voter)}]
	return ok, nil
}

func (s *Store) GetBallot(_ context.Context, proposalID uint64, voter string) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[ballotKey{proposalID: proposalID, voter: strings.TrimSpace(voter)}]
	return ballot, ok, nil
}

// BallotCount reports recorded ballots for one proposal. Test and invariant
// checks use it to cross-check tallies.
func (s *Store) BallotCount(proposalID uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for key := range s.ballots {
		if key.proposalID == proposalID {
			count++
		}
	}
	return count
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrEventConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outboxSeq++
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
		seq: s.outboxSeq,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	type pendingRow struct {
		message ports.OutboxMessage
		seq     uint64
	}
	rows := make([]pendingRow, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		rows = append(rows, pendingRow{message: row.message, seq: row.seq})
	}
	// Append sequence, not wall clock: events committed in the same instant
	// must still relay in commit order.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrEventConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrEventConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ProposalRepository = (*Store)(nil)
var _ ports.BallotRegistry = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.EventDedupStore = (*Store)(nil)
