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

// CreateProposalCommand is the write-model input for proposal creation.
type CreateProposalCommand struct {
	ParkName      string
	ParkID        string
	Description   string
	Creator       string
	EndTime       time.Time
	Environmental entities.EnvironmentalData
	Demographics  entities.Demographics
}

// ProposalUseCase orchestrates proposal creation: input validation, monotonic
// id allocation through the repository, and creation event emission. All
// write use cases share one WriteLock; the ledger assumes a single logical
// writer, so every mutation runs as one serialized step.
type ProposalUseCase struct {
	Proposals ports.ProposalRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	WriteLock *sync.Mutex
	Logger    *slog.Logger
}

// CreateProposal validates the command and appends a new Active proposal with
// zero tallies. Invalid input fails before the counter advances.
func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)

	now := uc.now()
	if strings.TrimSpace(cmd.ParkName) == "" ||
		strings.TrimSpace(cmd.ParkID) == "" ||
		strings.TrimSpace(cmd.Creator) == "" ||
		!cmd.EndTime.After(now) {
		logger.Warn("proposal create validation failed",
			"event", "ledger_proposal_create_validation_failed",
			"module", "governance/voting-ledger",
			"layer", "application",
			"park_id", strings.TrimSpace(cmd.ParkID),
			"creator", strings.TrimSpace(cmd.Creator),
		)
		return entities.Proposal{}, domainerrors.ErrInvalidInput
	}

	uc.lock()
	defer uc.unlock()

	proposal := entities.Proposal{
		ParkName:      strings.TrimSpace(cmd.ParkName),
		ParkID:        strings.TrimSpace(cmd.ParkID),
		Description:   strings.TrimSpace(cmd.Description),
		Creator:       strings.TrimSpace(cmd.Creator),
		EndTime:       cmd.EndTime.UTC(),
		Status:        entities.StatusActive,
		Environmental: cmd.Environmental,
		Demographics:  cmd.Demographics,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	stored, err := uc.Proposals.InsertProposal(ctx, proposal)
	if err != nil {
		return entities.Proposal{}, err
	}

	if err := uc.appendEvent(ctx, "proposal.created", stored.ID, now, map[string]any{
		"proposal_id": stored.ID,
		"park_name":   stored.ParkName,
		"park_id":     stored.ParkID,
		"end_time":    stored.EndTime.Format(time.RFC3339),
		"creator":     stored.Creator,
		"description": stored.Description,
	}); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal created",
		"event", "ledger_proposal_created",
		"module", "governance/voting-ledger",
		"layer", "application",
		"proposal_id", stored.ID,
		"park_id", stored.ParkID,
		"end_time", stored.EndTime.Format(time.RFC3339),
		"creator", stored.Creator,
	)
	return stored, nil
}

// AnnounceInitialized emits the one-time ledger.initialized event. Bootstrap
// calls it once per process after wiring the module.
func (uc ProposalUseCase) AnnounceInitialized(ctx context.Context) error {
	uc.lock()
	defer uc.unlock()

	total, err := uc.Proposals.TotalProposals(ctx)
	if err != nil {
		return err
	}
	return uc.appendEvent(ctx, "ledger.initialized", 0, uc.now(), map[string]any{
		"total_proposals": total,
	})
}

func (uc ProposalUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	proposalID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newLedgerEnvelope(eventID, eventType, proposalID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ProposalUseCase) lock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Lock()
	}
}

func (uc ProposalUseCase) unlock() {
	if uc.WriteLock != nil {
		uc.WriteLock.Unlock()
	}
}
