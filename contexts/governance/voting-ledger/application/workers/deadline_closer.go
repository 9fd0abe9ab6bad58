package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "parkpulse/contexts/governance/voting-ledger/application"
	"parkpulse/contexts/governance/voting-ledger/application/commands"
	domainerrors "parkpulse/contexts/governance/voting-ledger/domain/errors"
	"parkpulse/contexts/governance/voting-ledger/ports"
)

// DeadlineCloserStats summarizes one sweep over the active proposals.
type DeadlineCloserStats struct {
	Scanned int
	Closed  int
	Skipped int
	Failed  int
}

// DeadlineCloser sweeps the active proposals and resolves every one whose
// voting deadline has passed, using the module's admin capability. Proposals
// still inside their window are skipped; resolution races (another closer or
// an admin resolving first) count as skipped, not failed.
type DeadlineCloser struct {
	Proposals   ports.ProposalRepository
	Resolutions commands.ResolutionUseCase
	Capability  *commands.AdminCapability
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (c DeadlineCloser) RunOnce(ctx context.Context) (DeadlineCloserStats, error) {
	logger := application.ResolveLogger(c.Logger)

	ids, err := c.Proposals.ListActiveProposalIDs(ctx)
	if err != nil {
		logger.Error("ledger deadline sweep list failed",
			"event", "ledger_deadline_sweep_list_failed",
			"module", "governance/voting-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return DeadlineCloserStats{}, err
	}

	now := c.now()
	stats := DeadlineCloserStats{Scanned: len(ids)}
	for _, id := range ids {
		proposal, found, err := c.Proposals.GetProposal(ctx, id)
		if err != nil {
			stats.Failed++
			logger.Error("ledger deadline sweep load failed",
				"event", "ledger_deadline_sweep_load_failed",
				"module", "governance/voting-ledger",
				"layer", "worker",
				"proposal_id", id,
				"error", err.Error(),
			)
			continue
		}
		if !found || !now.After(proposal.EndTime) {
			stats.Skipped++
			continue
		}

		if _, err := c.Resolutions.Resolve(ctx, c.Capability, id); err != nil {
			if errors.Is(err, domainerrors.ErrProposalNotActive) || errors.Is(err, domainerrors.ErrVotingOpen) {
				stats.Skipped++
				continue
			}
			stats.Failed++
			logger.Error("ledger deadline sweep resolve failed",
				"event", "ledger_deadline_sweep_resolve_failed",
				"module", "governance/voting-ledger",
				"layer", "worker",
				"proposal_id", id,
				"error", err.Error(),
			)
			continue
		}
		stats.Closed++
	}

	logger.Info("ledger deadline sweep completed",
		"event", "ledger_deadline_sweep_completed",
		"module", "governance/voting-ledger",
		"layer", "worker",
		"scanned", stats.Scanned,
		"closed", stats.Closed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (c DeadlineCloser) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}
