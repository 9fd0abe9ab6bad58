package entities

import "time"

// ProposalStatus enumerates the proposal lifecycle. A proposal starts Active
// and transitions exactly once to Accepted or Declined, never back.
type ProposalStatus uint8

const (
	StatusActive ProposalStatus = iota
	StatusAccepted
	StatusDeclined
)

// String returns the wire label used by the public API.
func (s ProposalStatus) String() string {
	switch s {
	case StatusAccepted:
		return "passed"
	case StatusDeclined:
		return "rejected"
	default:
		return "active"
	}
}

// Terminal reports whether the status ends the voting lifecycle.
func (s ProposalStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// ParseTerminalStatus maps a wire label to a terminal status. The boolean is
// false for "active" and for unknown labels.
func ParseTerminalStatus(label string) (ProposalStatus, bool) {
	switch label {
	case "passed", "accepted":
		return StatusAccepted, true
	case "rejected", "declined":
		return StatusDeclined, true
	default:
		return StatusActive, false
	}
}

// EnvironmentalData carries the before/after impact measurements captured at
// proposal creation. Values are stored as supplied and never revalidated.
type EnvironmentalData struct {
	NDVIBefore            float64
	NDVIAfter             float64
	PM25Before            float64
	PM25After             float64
	PM25IncreasePercent   float64
	VegetationLossPercent float64
}

// Demographics describes the population affected by the park change.
type Demographics struct {
	Children                uint64
	Adults                  uint64
	Seniors                 uint64
	TotalAffectedPopulation uint64
}

// Proposal is a single park-protection vote item. ID, metadata, EndTime,
// Creator, and the nested records are immutable after creation; only the
// tallies and Status mutate, through the ledger repository.
type Proposal struct {
	ID            uint64
	ParkName      string
	ParkID        string
	Description   string
	Creator       string
	EndTime       time.Time
	Status        ProposalStatus
	YesVotes      uint64
	NoVotes       uint64
	Environmental EnvironmentalData
	Demographics  Demographics
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ActiveAt reports whether the proposal accepts votes at the given instant:
// status still Active and the deadline not yet exceeded.
func (p Proposal) ActiveAt(now time.Time) bool {
	return p.Status == StatusActive && !now.After(p.EndTime)
}

// Outcome computes the terminal status from the tallies. A tie declines;
// passing requires a strict yes majority.
func (p Proposal) Outcome() ProposalStatus {
	if p.YesVotes > p.NoVotes {
		return StatusAccepted
	}
	return StatusDeclined
}

// Ballot records one identity's final choice on one proposal. Ballots are
// inserted once and never overwritten or removed.
type Ballot struct {
	ProposalID uint64
	Voter      string
	Choice     bool
	CastAt     time.Time
}

// VoteCounts is the tally pair exposed to readers.
type VoteCounts struct {
	Yes uint64
	No  uint64
}
